package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"latch/internal/models"
)

var (
	ErrCodeNotFound = errors.New("enrollment code not found")
	ErrClaimed      = errors.New("enrollment code already claimed")
	ErrExpired      = errors.New("enrollment code expired")
	ErrConflict     = errors.New("enrollment code conflict")
)

type EnrollmentStore struct{ db *gorm.DB }

func NewEnrollmentStore(db *gorm.DB) *EnrollmentStore { return &EnrollmentStore{db: db} }

// CreatePending вставляет pending-запись; нарушение уникального индекса
// по code приходит как gorm.ErrDuplicatedKey (TranslateError в db.Open).
func (s *EnrollmentStore) CreatePending(ctx context.Context, rec *models.EnrollmentCode) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// Claim: транзакция + SELECT ... FOR UPDATE по коду. Проверка expiry и
// отметка claimed видят один и тот же снапшот; из двух конкурентных
// заявок вторая ждёт блокировку и получает ErrClaimed.
func (s *EnrollmentStore) Claim(ctx context.Context, code, deviceName, platform string, now time.Time) (*models.Device, error) {
	var dev *models.Device
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.EnrollmentCode
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		if err != nil {
			return err
		}
		if rec.Claimed() {
			return ErrClaimed
		}
		if rec.ExpiredAt(now) {
			return ErrExpired
		}

		d := models.Device{
			CreatedAt: now,
			UUID:      uuid.NewString(),
			OwnerID:   rec.OwnerID,
			Name:      deviceName,
			Platform:  platform,
		}
		if err := tx.Create(&d).Error; err != nil {
			return err
		}

		rec.ClaimedAt = &now
		rec.ClaimedDeviceID = &d.UUID
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}

		dev = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func (s *EnrollmentStore) AppendEvent(ctx context.Context, ev *models.EnrollmentEvent) error {
	return s.db.WithContext(ctx).Create(ev).Error
}
