package composing

import (
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/internal/domain"
)

// DesignTokens parametriza a identidade visual sem acoplar o compositor a um
// renderizador concreto
type DesignTokens struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	FontFamily     string `json:"font_family"`
	LogoURL        string `json:"logo_url,omitempty"`
}

// DeckOutput é o artefato produzido por um renderizador: um documento em bytes
// ou a URL de um documento hospedado
type DeckOutput struct {
	ContentType string
	Filename    string
	Data        []byte
	URL         string
}

// DeckRenderer materializa slides em um formato final (PPTX, Google Slides).
// Cada slide é entregue exatamente uma vez, na ordem do deck.
type DeckRenderer interface {
	Initialize(tokens DesignTokens) error
	AddSlide(slide domain.SlideData) error
	Finalize() (*DeckOutput, error)
}

// RendererFactory cria um renderizador novo por deck; renderizadores carregam
// estado entre Initialize e Finalize e não podem ser compartilhados
type RendererFactory func() DeckRenderer

func DefaultDesignTokens() DesignTokens {
	return DesignTokens{
		PrimaryColor:   "#1A73E8",
		SecondaryColor: "#202124",
		AccentColor:    "#34A853",
		FontFamily:     "Inter",
	}
}

// RenderDeck percorre o deck pelo contrato do renderizador; o compositor nunca
// sabe como os slides são desenhados
func RenderDeck(renderer DeckRenderer, deck *domain.Deck, tokens DesignTokens) (*DeckOutput, error) {
	if err := renderer.Initialize(tokens); err != nil {
		return nil, err
	}

	for _, slide := range deck.Slides {
		if err := renderer.AddSlide(slide); err != nil {
			return nil, err
		}
	}

	output, err := renderer.Finalize()
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"deck_id": deck.ID,
		"slides":  len(deck.Slides),
	}).Info("composing: deck rendered")

	return output, nil
}
