package enroll

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"latch/internal/models"
)

// memStore — режим без БД (database.driver = ""), а также тестовый стенд.
// Мьютекс даёт ту же атомарность claim, что транзакция в SQL-варианте.
type memStore struct {
	mu      sync.Mutex
	nextID  uint
	codes   map[string]*models.EnrollmentCode
	devices map[string]*models.Device
	events  []models.EnrollmentEvent
}

func NewMemStore() *memStore {
	return &memStore{
		codes:   make(map[string]*models.EnrollmentCode),
		devices: make(map[string]*models.Device),
	}
}

func (m *memStore) CreatePending(_ context.Context, rec *models.EnrollmentCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[rec.Code]; ok {
		return ErrCodeConflict
	}
	m.nextID++
	cp := *rec
	cp.ID = m.nextID
	m.codes[cp.Code] = &cp
	rec.ID = cp.ID
	return nil
}

func (m *memStore) Claim(_ context.Context, code, deviceName, platform string, now time.Time) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	if rec.Claimed() {
		return nil, ErrAlreadyClaimed
	}
	if rec.ExpiredAt(now) {
		return nil, ErrCodeExpired
	}

	m.nextID++
	d := &models.Device{
		ID:        m.nextID,
		CreatedAt: now,
		UUID:      uuid.NewString(),
		OwnerID:   rec.OwnerID,
		Name:      deviceName,
		Platform:  platform,
	}
	m.devices[d.UUID] = d
	rec.ClaimedAt = &now
	rec.ClaimedDeviceID = &d.UUID

	cp := *d
	return &cp, nil
}

func (m *memStore) AppendEvent(_ context.Context, ev *models.EnrollmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ev.ID = m.nextID
	m.events = append(m.events, *ev)
	return nil
}

// Devices — снимок для инспекции в тестах.
func (m *memStore) Devices() []models.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, *d)
	}
	return out
}

// Events — снимок для инспекции в тестах.
func (m *memStore) Events() []models.EnrollmentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EnrollmentEvent, len(m.events))
	copy(out, m.events)
	return out
}
