package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/connecting"
	"github.com/vfg2006/prism-reports-api/pkg/apiErrors"
	"github.com/vfg2006/prism-reports-api/pkg/middleware"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

type ConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

type CallbackResponse struct {
	Platform domain.Platform     `json:"platform"`
	Accounts []*domain.AdAccount `json:"accounts"`
}

// BeginConnect inicia o fluxo OAuth de uma plataforma e retorna a URL de
// autorização para o frontend redirecionar o usuário
func BeginConnect(cfg *config.Config, service connecting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		platform := domain.Platform(httprouter.ParamsFromContext(r.Context()).ByName("platform"))
		if !platform.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Plataforma não suportada", map[string]any{
				"platform": platform,
			})
			return
		}

		authURL, err := service.BeginConnect(userClaims.UserClientID, platform, cfg.Auth.RedirectURL)
		if err != nil {
			logrus.WithError(err).Error("connect: failed to build authorization url")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao iniciar conexão com a plataforma", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ConnectResponse{AuthURL: authURL})
	}
}

// ConnectCallback recebe o redirecionamento da plataforma após a autorização.
// A rota é pública porque o navegador chega sem o token da API; a identidade
// do cliente vem do state assinado
func ConnectCallback(cfg *config.Config, service connecting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		params := connecting.CallbackParams{
			State:       query.Get("state"),
			Code:        query.Get("code"),
			RedirectURI: cfg.Auth.RedirectURL,
			ShopDomain:  query.Get("shop"),
		}

		if params.State == "" || params.Code == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Parâmetros state e code são obrigatórios", nil)
			return
		}

		accounts, err := service.HandleCallback(r.Context(), params)
		if err != nil {
			handleCallbackError(w, err)
			return
		}

		resp := CallbackResponse{Accounts: accounts}
		if len(accounts) > 0 {
			resp.Platform = accounts[0].Platform
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleCallbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, connecting.ErrInvalidState), errors.Is(err, connecting.ErrStateReused):
		apiErrors.WriteError(w, apiErrors.ErrInvalidState, "State de autorização inválido ou já utilizado", nil)

	default:
		if platformErr, ok := prismErrors.As(err); ok {
			logrus.WithFields(logrus.Fields{
				"platform": platformErr.Platform,
				"kind":     platformErr.Kind,
			}).Warn("connect: platform callback failed")
			apiErrors.WritePlatformError(w, platformErr)
			return
		}

		logrus.WithError(err).Error("connect: callback failed")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao concluir conexão com a plataforma", nil)
	}
}
