package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/reporting"
	"github.com/vfg2006/prism-reports-api/pkg/apiErrors"
	"github.com/vfg2006/prism-reports-api/pkg/middleware"
	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

const defaultDeckListLimit = 20

type GenerateDeckRequest struct {
	Title      string   `json:"title"`
	ClientName string   `json:"client_name"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	AccountIDs []string `json:"account_ids"`
}

// AccountFailureResponse relata uma conta excluída do relatório junto da ação
// que o frontend deve oferecer ao usuário
type AccountFailureResponse struct {
	AccountID         string          `json:"account_id"`
	AccountName       string          `json:"account_name"`
	Platform          domain.Platform `json:"platform"`
	Code              string          `json:"code"`
	Kind              string          `json:"kind"`
	Message           string          `json:"message"`
	Recovery          string          `json:"recovery"`
	RetryAfterSeconds int             `json:"retry_after_seconds,omitempty"`
}

// DeckOutputResponse descreve o artefato renderizado; Data só é preenchido
// quando o renderizador devolve o documento em bytes
type DeckOutputResponse struct {
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
	SizeBytes   int    `json:"size_bytes,omitempty"`
	URL         string `json:"url,omitempty"`
}

type GenerateDeckResponse struct {
	Deck     *domain.Deck             `json:"deck"`
	Output   *DeckOutputResponse      `json:"output,omitempty"`
	Failures []AccountFailureResponse `json:"failures"`
}

// GenerateDeck monta um relatório para o cliente do usuário logado no período
// informado; falhas parciais de contas não impedem a geração
func GenerateDeck(service reporting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		var req GenerateDeckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		rng, err := parseDateRange(req.StartDate, req.EndDate)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		result, err := service.GenerateDeck(r.Context(), reporting.GenerateParams{
			ClientID:   userClaims.UserClientID,
			ClientName: req.ClientName,
			Title:      req.Title,
			Range:      rng,
			AccountIDs: req.AccountIDs,
		})
		if err != nil {
			if errors.Is(err, reporting.ErrNoAccounts) {
				apiErrors.WriteError(w, apiErrors.ErrNotFound, "Nenhuma conta conectada para gerar o relatório", nil)
				return
			}
			logrus.WithError(err).Error("reports: deck generation failed")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar relatório", nil)
			return
		}

		resp := GenerateDeckResponse{
			Deck:     result.Deck,
			Failures: make([]AccountFailureResponse, 0, len(result.Failures)),
		}
		if result.Output != nil {
			resp.Output = &DeckOutputResponse{
				ContentType: result.Output.ContentType,
				Filename:    result.Output.Filename,
				SizeBytes:   len(result.Output.Data),
				URL:         result.Output.URL,
			}
		}
		for _, failure := range result.Failures {
			item := AccountFailureResponse{
				AccountID:   failure.Account.ID,
				AccountName: failure.Account.Name,
				Platform:    failure.Account.Platform,
				Code:        failure.Err.Code,
				Kind:        string(failure.Err.Kind),
				Message:     failure.Err.Message,
				Recovery:    string(failure.Recovery),
			}
			if failure.Err.RetryAfter > 0 {
				item.RetryAfterSeconds = int(failure.Err.RetryAfter.Seconds())
			}
			resp.Failures = append(resp.Failures, item)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		err = json.NewEncoder(w).Encode(resp)
		if err != nil {
			logrus.Error(err)
		}
	}
}

// ListDecks lista os relatórios já gerados do cliente do usuário logado
func ListDecks(service reporting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		limit := defaultDeckListLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Limite inválido", nil)
				return
			}
			limit = parsed
		}

		decks, err := service.ListDecks(userClaims.UserClientID, limit)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar relatórios", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(decks)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// GetDeck retorna um relatório pelo ID; usuários só acessam relatórios do
// próprio cliente
func GetDeck(service reporting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		deckID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if deckID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do relatório não fornecido", nil)
			return
		}

		deck, err := service.GetDeck(deckID)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar relatório", nil)
			return
		}

		if deck == nil || deck.ClientID != userClaims.UserClientID {
			apiErrors.WriteError(w, apiErrors.ErrNotFound, "Relatório não encontrado", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(deck)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

func parseDateRange(startStr, endStr string) (domain.DateRange, error) {
	if startStr == "" || endStr == "" {
		return domain.DateRange{}, errors.New("start_date e end_date são obrigatórios")
	}

	start, err := utils.ParseDate(startStr)
	if err != nil {
		return domain.DateRange{}, errors.New("start_date inválida, use o formato YYYY-MM-DD")
	}

	end, err := utils.ParseDate(endStr)
	if err != nil {
		return domain.DateRange{}, errors.New("end_date inválida, use o formato YYYY-MM-DD")
	}

	if end.Before(*start) {
		return domain.DateRange{}, errors.New("end_date não pode ser anterior a start_date")
	}

	if end.Sub(*start) > 366*24*time.Hour {
		return domain.DateRange{}, errors.New("o período não pode exceder um ano")
	}

	return domain.NewDateRange(*start, *end), nil
}
