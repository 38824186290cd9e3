package composing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/prism-reports-api/internal/domain"
)

// fakeRenderer grava a sequência de chamadas do contrato
type fakeRenderer struct {
	tokens      DesignTokens
	slides      []domain.SlideType
	initErr     error
	addSlideErr error
	output      *DeckOutput
}

func (r *fakeRenderer) Initialize(tokens DesignTokens) error {
	r.tokens = tokens
	return r.initErr
}

func (r *fakeRenderer) AddSlide(slide domain.SlideData) error {
	r.slides = append(r.slides, slide.Type())
	return r.addSlideErr
}

func (r *fakeRenderer) Finalize() (*DeckOutput, error) {
	if r.output == nil {
		return nil, errors.New("nothing rendered")
	}
	return r.output, nil
}

func testDeck() *domain.Deck {
	return &domain.Deck{
		ID: "deck-1",
		Slides: []domain.SlideData{
			&domain.TitleSlide{Title: "March Recap"},
			&domain.ExecutiveSummarySlide{Text: "strong month"},
		},
	}
}

func TestRenderDeck_DeliversSlidesInOrder(t *testing.T) {
	renderer := &fakeRenderer{
		output: &DeckOutput{ContentType: "application/vnd.openxmlformats-officedocument.presentationml.presentation", Filename: "march-recap.pptx", Data: []byte("pptx")},
	}
	tokens := DesignTokens{PrimaryColor: "#0B5FFF", FontFamily: "Inter"}

	output, err := RenderDeck(renderer, testDeck(), tokens)
	require.NoError(t, err)

	assert.Equal(t, tokens, renderer.tokens)
	assert.Equal(t, []domain.SlideType{domain.SlideTitle, domain.SlideExecutiveSummary}, renderer.slides)
	assert.Equal(t, "march-recap.pptx", output.Filename)
}

func TestRenderDeck_InitializeFailureStopsEarly(t *testing.T) {
	renderer := &fakeRenderer{initErr: errors.New("template missing")}

	_, err := RenderDeck(renderer, testDeck(), DesignTokens{})
	require.Error(t, err)
	assert.Empty(t, renderer.slides)
}

func TestRenderDeck_AddSlideFailure(t *testing.T) {
	renderer := &fakeRenderer{addSlideErr: errors.New("unsupported slide")}

	_, err := RenderDeck(renderer, testDeck(), DesignTokens{})
	require.Error(t, err)
}
