package enroll

import (
	"context"
	"errors"
	"time"

	"latch/internal/models"
)

var (
	ErrCodeNotFound   = errors.New("enrollment code not found")
	ErrAlreadyClaimed = errors.New("enrollment code already claimed")
	ErrCodeExpired    = errors.New("enrollment code expired")
	ErrCodeConflict   = errors.New("enrollment code conflict")
	ErrTransient      = errors.New("store temporarily unavailable")
	ErrExhausted      = errors.New("code generation exhausted")
	ErrEmptyCode      = errors.New("empty code")
)

// Store — хранилище кодов/устройств. Claim обязан быть атомарным:
// две конкурентные заявки на один код — ровно один победитель.
type Store interface {
	// CreatePending вставляет новую запись; дубликат кода → ErrCodeConflict.
	CreatePending(ctx context.Context, rec *models.EnrollmentCode) error

	// Claim: lookup-check-mutate единым снапшотом. Успех создаёт Device
	// и помечает запись заявленной; запись терминальна.
	Claim(ctx context.Context, code, deviceName, platform string, now time.Time) (*models.Device, error)

	// AppendEvent — best-effort аудит; ошибка не влияет на результат claim.
	AppendEvent(ctx context.Context, ev *models.EnrollmentEvent) error
}
