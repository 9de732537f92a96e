package identity

import (
	"context"
	"errors"
)

// Principal — аутентифицированная личность владельца (из внешнего IdP).
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

var (
	ErrMissingToken = errors.New("missing bearer token")

	// Любой сбой проверки (сеть, таймаут, 4xx, битый ответ) схлопывается
	// в ErrInvalidSession — причина отказа не раскрывается вызывающему.
	ErrInvalidSession = errors.New("invalid session")
)

type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}
