package connecting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

// stateTTL limita a vida do token anti-CSRF do fluxo OAuth
const stateTTL = 10 * time.Minute

var (
	ErrInvalidState = errors.New("invalid or expired oauth state")
	ErrStateReused  = errors.New("oauth state already consumed")
)

// stateClaims amarra o state ao cliente e à plataforma que iniciaram o fluxo
type stateClaims struct {
	ClientID string          `json:"client_id"`
	Platform domain.Platform `json:"platform"`
	Nonce    string          `json:"nonce"`
	jwt.RegisteredClaims
}

// stateSigner emite e valida o state assinado; o nonce garante uso único
// dentro do processo
type stateSigner struct {
	secret []byte

	mu       sync.Mutex
	consumed map[string]time.Time
}

func newStateSigner(secret string) *stateSigner {
	return &stateSigner{
		secret:   []byte(secret),
		consumed: make(map[string]time.Time),
	}
}

func (s *stateSigner) Issue(clientID string, platform domain.Platform) (string, error) {
	nonce, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	claims := stateClaims{
		ClientID: clientID,
		Platform: platform,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Consume valida o state e o marca como usado; qualquer falha de validação é
// terminal, o fluxo nunca prossegue com state suspeito
func (s *stateSigner) Consume(state string) (*stateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidState
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || claims.Nonce == "" {
		return nil, ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, used := s.consumed[claims.Nonce]; used {
		return nil, ErrStateReused
	}
	s.consumed[claims.Nonce] = time.Now()
	s.evictExpiredLocked()

	return claims, nil
}

// evictExpiredLocked descarta nonces mais velhos que o TTL do state; chamadas
// posteriores com eles já falham na validação do exp
func (s *stateSigner) evictExpiredLocked() {
	cutoff := time.Now().Add(-stateTTL)
	for nonce, usedAt := range s.consumed {
		if usedAt.Before(cutoff) {
			delete(s.consumed, nonce)
		}
	}
}
