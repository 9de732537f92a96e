package enroll

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	"latch/internal/identity"
	"latch/internal/logs"
	"latch/internal/models"
)

const (
	// CodeTTL — фиксированное окно валидности кода.
	CodeTTL = 15 * time.Minute

	createAttempts = 3 // повторы генерации при коллизии кода

	maxDeviceNameLen = 80
	maxPlatformLen   = 20

	defaultDeviceName = "New Device"
	defaultPlatform   = "ios"
)

const EventDeviceEnrolled = "device_enrolled"

type Service struct {
	store Store
	now   func() time.Time // подменяется в тестах
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateResult struct {
	Code      string
	ExpiresAt time.Time
}

// CreateEnrollment выдаёт владельцу новый pending-код со сроком now+TTL.
// Коллизия кода — повторная генерация, не более createAttempts раз.
func (s *Service) CreateEnrollment(ctx context.Context, owner *identity.Principal) (*CreateResult, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		now := s.now().UTC()
		rec := &models.EnrollmentCode{
			CreatedAt: now,
			OwnerID:   owner.ID,
			Code:      code,
			ExpiresAt: now.Add(CodeTTL),
		}
		err = s.store.CreatePending(ctx, rec)
		if errors.Is(err, ErrCodeConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &CreateResult{Code: code, ExpiresAt: rec.ExpiresAt}, nil
	}
	return nil, ErrExhausted
}

type ClaimResult struct {
	DeviceID string
	OwnerID  string
}

// ClaimEnrollment: код сам по себе является credential, аутентификация не нужна.
// Пустой код отбрасывается до обращения к store.
func (s *Service) ClaimEnrollment(ctx context.Context, code, deviceName, platform string) (*ClaimResult, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	deviceName = sanitize(deviceName, defaultDeviceName, maxDeviceNameLen)
	platform = sanitize(platform, defaultPlatform, maxPlatformLen)

	dev, err := s.store.Claim(ctx, code, deviceName, platform, s.now().UTC())
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]string{
		"code":        code,
		"device_name": dev.Name,
		"platform":    dev.Platform,
	})
	ev := &models.EnrollmentEvent{
		CreatedAt: s.now().UTC(),
		OwnerID:   dev.OwnerID,
		DeviceID:  dev.UUID,
		Type:      EventDeviceEnrolled,
		Payload:   datatypes.JSON(payload),
	}
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		// аудит best-effort: claim уже состоялся
		logs.Logger.Warnf("enroll: append event failed: %v", err)
	}

	return &ClaimResult{DeviceID: dev.UUID, OwnerID: dev.OwnerID}, nil
}

func sanitize(v, def string, max int) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if r := []rune(v); len(r) > max {
		return string(r[:max])
	}
	return v
}
