package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/repository"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/apiErrors"
	"github.com/vfg2006/prism-reports-api/pkg/middleware"
)

type ConnectedAccountResponse struct {
	ID         string          `json:"id"`
	Platform   domain.Platform `json:"platform"`
	PlatformID string          `json:"platform_id"`
	Name       string          `json:"name"`
}

// ListConnectedAccounts lista as contas de plataforma conectadas ao cliente
// do usuário logado; os tokens nunca saem na resposta
func ListConnectedAccounts(repo repository.AccountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		accounts, err := repo.ListActiveAccountsByClient(userClaims.UserClientID)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar contas conectadas", nil)
			return
		}

		resp := make([]ConnectedAccountResponse, 0, len(accounts))
		for _, account := range accounts {
			resp = append(resp, ConnectedAccountResponse{
				ID:         account.ID,
				Platform:   account.Platform,
				PlatformID: account.PlatformID,
				Name:       account.Name,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(resp)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
