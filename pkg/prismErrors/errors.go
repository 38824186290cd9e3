package prismErrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind é o conjunto fechado de tipos de falha dos conectores
type Kind string

const (
	KindTokenExpired   Kind = "TOKEN_EXPIRED"
	KindRateLimited    Kind = "RATE_LIMITED"
	KindAccountAccess  Kind = "ACCOUNT_ACCESS"
	KindNetworkError   Kind = "NETWORK_ERROR"
	KindAPIError       Kind = "API_ERROR"
	KindDataValidation Kind = "DATA_VALIDATION"
)

// RecoveryAction instrui o chamador sobre como reagir à falha.
// Os consumidores ramificam por esta ação, nunca pelo texto da mensagem.
type RecoveryAction string

const (
	RecoveryReconnect        RecoveryAction = "reconnect"
	RecoveryRetryWithBackoff RecoveryAction = "retry_with_backoff"
	RecoverySelectAccount    RecoveryAction = "select_account"
	RecoveryAbortWithMessage RecoveryAction = "abort_with_message"
)

// Códigos de erro de integração
const (
	CodeTokenExpired     = "INT_001" // Token expirado ou inválido
	CodeRateLimited      = "INT_002" // Limite de requisições excedido
	CodeAccountAccess    = "INT_003" // Permissão negada para a conta
	CodeNetwork          = "INT_004" // Falha de transporte
	CodeTimeout          = "INT_005" // Timeout da requisição
	CodeAPIGeneric       = "INT_006" // Erro genérico da API da plataforma
	CodeInvalidPayload   = "INT_007" // Payload não passou na normalização
	CodeRefreshUnsupport = "INT_008" // Plataforma não suporta refresh de token
)

// Cada tipo de falha tem exatamente uma ação de recuperação
var recoveryByKind = map[Kind]RecoveryAction{
	KindTokenExpired:   RecoveryReconnect,
	KindRateLimited:    RecoveryRetryWithBackoff,
	KindAccountAccess:  RecoverySelectAccount,
	KindNetworkError:   RecoveryRetryWithBackoff,
	KindAPIError:       RecoveryAbortWithMessage,
	KindDataValidation: RecoveryAbortWithMessage,
}

// defaultNetworkBackoff é o backoff fixo para falhas de transporte
const defaultNetworkBackoff = 5 * time.Second

// Error é o erro tipado que atravessa a fronteira dos conectores
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	Platform   string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s/%s]: %s", e.Platform, e.Kind, e.Code, e.Message)
}

// Recovery retorna a ação de recuperação fixa do tipo de falha
func (e *Error) Recovery() RecoveryAction {
	if action, ok := recoveryByKind[e.Kind]; ok {
		return action
	}
	return RecoveryAbortWithMessage
}

func NewTokenExpired(platform, message string) *Error {
	return &Error{
		Kind:     KindTokenExpired,
		Code:     CodeTokenExpired,
		Message:  message,
		Platform: platform,
	}
}

func NewRateLimited(platform, message string, retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Code:       CodeRateLimited,
		Message:    message,
		Platform:   platform,
		RetryAfter: retryAfter,
	}
}

func NewAccountAccess(platform, message string) *Error {
	return &Error{
		Kind:     KindAccountAccess,
		Code:     CodeAccountAccess,
		Message:  message,
		Platform: platform,
	}
}

func NewNetworkError(platform, message string) *Error {
	return &Error{
		Kind:       KindNetworkError,
		Code:       CodeNetwork,
		Message:    message,
		Platform:   platform,
		RetryAfter: defaultNetworkBackoff,
	}
}

// NewTimeout é uma falha de rede com código próprio para que o motor de
// agregação consiga distinguir timeouts nos relatórios de falha parcial
func NewTimeout(platform, message string) *Error {
	return &Error{
		Kind:       KindNetworkError,
		Code:       CodeTimeout,
		Message:    message,
		Platform:   platform,
		RetryAfter: defaultNetworkBackoff,
	}
}

func NewAPIError(platform, code, message string) *Error {
	if code == "" {
		code = CodeAPIGeneric
	}
	return &Error{
		Kind:     KindAPIError,
		Code:     code,
		Message:  message,
		Platform: platform,
	}
}

func NewDataValidation(platform, message string) *Error {
	return &Error{
		Kind:     KindDataValidation,
		Code:     CodeInvalidPayload,
		Message:  message,
		Platform: platform,
	}
}

// ClassifyHTTP mapeia uma resposta não-2xx para exatamente um tipo de falha.
// Falhas não classificadas viram APIError para que a UI sempre tenha uma
// ação determinada a oferecer.
func ClassifyHTTP(platform string, statusCode int, body string, retryAfter time.Duration) *Error {
	switch statusCode {
	case http.StatusUnauthorized:
		return NewTokenExpired(platform, truncateBody(body))
	case http.StatusForbidden:
		return NewAccountAccess(platform, truncateBody(body))
	case http.StatusTooManyRequests:
		if retryAfter <= 0 {
			retryAfter = 30 * time.Second
		}
		return NewRateLimited(platform, truncateBody(body), retryAfter)
	}

	return NewAPIError(platform, "", fmt.Sprintf("unexpected status %d: %s", statusCode, truncateBody(body)))
}

// As verifica se err carrega um *Error da taxonomia
func As(err error) (*Error, bool) {
	var prismErr *Error
	if errors.As(err, &prismErr) {
		return prismErr, true
	}
	return nil, false
}

// Ensure garante que qualquer erro cruzando a fronteira do conector esteja
// classificado; erros desconhecidos viram APIError genérico
func Ensure(platform string, err error) *Error {
	if err == nil {
		return nil
	}
	if prismErr, ok := As(err); ok {
		return prismErr
	}
	return NewAPIError(platform, "", err.Error())
}

func truncateBody(body string) string {
	const maxLen = 300
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	return body
}
