package server

import (
	"context"
	"errors"
	"time"

	"latch/internal/enroll"
	"latch/internal/models"
	"latch/internal/repo"
)

// Адаптер repo.EnrollmentStore → enroll.Store: перевод сентинелов репозитория
// в доменные ошибки протокола.
type storeAdapter struct{ es *repo.EnrollmentStore }

func newStoreAdapter(es *repo.EnrollmentStore) enroll.Store { return &storeAdapter{es: es} }

func (a *storeAdapter) CreatePending(ctx context.Context, rec *models.EnrollmentCode) error {
	err := a.es.CreatePending(ctx, rec)
	if errors.Is(err, repo.ErrConflict) {
		return enroll.ErrCodeConflict
	}
	return err
}

func (a *storeAdapter) Claim(ctx context.Context, code, deviceName, platform string, now time.Time) (*models.Device, error) {
	dev, err := a.es.Claim(ctx, code, deviceName, platform, now)
	switch {
	case err == nil:
		return dev, nil
	case errors.Is(err, repo.ErrCodeNotFound):
		return nil, enroll.ErrCodeNotFound
	case errors.Is(err, repo.ErrClaimed):
		return nil, enroll.ErrAlreadyClaimed
	case errors.Is(err, repo.ErrExpired):
		return nil, enroll.ErrCodeExpired
	default:
		// таймаут/обрыв посреди транзакции: исход мутации неизвестен,
		// клиенту можно только предложить повторить
		return nil, enroll.ErrTransient
	}
}

func (a *storeAdapter) AppendEvent(ctx context.Context, ev *models.EnrollmentEvent) error {
	return a.es.AppendEvent(ctx, ev)
}
