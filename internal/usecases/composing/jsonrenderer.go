package composing

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/prism-reports-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONRenderer materializa o deck como um documento JSON; é o renderizador
// padrão do serviço enquanto os renderizadores físicos (PPTX, Google Slides)
// vivem em colaboradores externos
type JSONRenderer struct {
	tokens DesignTokens
	slides []renderedSlide
}

type renderedSlide struct {
	Type domain.SlideType `json:"type"`
	Data domain.SlideData `json:"data"`
}

func NewJSONRenderer() DeckRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Initialize(tokens DesignTokens) error {
	r.tokens = tokens
	r.slides = nil
	return nil
}

func (r *JSONRenderer) AddSlide(slide domain.SlideData) error {
	r.slides = append(r.slides, renderedSlide{Type: slide.Type(), Data: slide})
	return nil
}

func (r *JSONRenderer) Finalize() (*DeckOutput, error) {
	document := struct {
		Design DesignTokens    `json:"design"`
		Slides []renderedSlide `json:"slides"`
	}{
		Design: r.tokens,
		Slides: r.slides,
	}

	data, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}

	return &DeckOutput{
		ContentType: "application/json",
		Filename:    "deck.json",
		Data:        data,
	}, nil
}
