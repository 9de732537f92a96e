package models

import (
	"time"

	"gorm.io/datatypes"
)

// EnrollmentCode — одноразовый код привязки устройства к аккаунту владельца.
// Записи не удаляются: заявленные и протухшие коды остаются как аудит-след.
type EnrollmentCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OwnerID   string     `gorm:"index;size:64;not null" json:"owner_id"`
	Code      string     `gorm:"uniqueIndex;size:16;not null" json:"code"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`

	ClaimedDeviceID *string `gorm:"size:64" json:"claimed_device_id,omitempty"`
}

// Claimed: запись терминальна — повторный claim невозможен.
func (c *EnrollmentCode) Claimed() bool { return c.ClaimedAt != nil }

func (c *EnrollmentCode) ExpiredAt(now time.Time) bool { return now.After(c.ExpiresAt) }

type Device struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	UUID     string `gorm:"uniqueIndex;size:64;not null" json:"device_id"`
	OwnerID  string `gorm:"index;size:64;not null" json:"owner_id"`
	Name     string `gorm:"size:80" json:"name"`
	Platform string `gorm:"size:20" json:"platform"`
}

// EnrollmentEvent — append-only аудит; ошибка записи не откатывает claim.
type EnrollmentEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OwnerID  string         `gorm:"index;size:64" json:"owner_id"`
	DeviceID string         `gorm:"size:64" json:"device_id"`
	Type     string         `gorm:"size:64" json:"type"`
	Payload  datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
}
