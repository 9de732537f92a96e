package enroll

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"latch/internal/identity"
	"latch/internal/logs"
	"latch/internal/models"
)

func TestMain(m *testing.M) {
	logs.Init(logs.Options{Level: "error"})
	os.Exit(m.Run())
}

var testOwner = &identity.Principal{ID: "u1", Email: "owner@example.com"}

func newTestService(store Store, at time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return at }
	return svc
}

func TestCreateThenClaim(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, start)
	ctx := context.Background()

	created, err := svc.CreateEnrollment(ctx, testOwner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if want := start.Add(CodeTTL); !created.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", created.ExpiresAt, want)
	}

	res, err := svc.ClaimEnrollment(ctx, created.Code, "Kitchen iPad", "ipados")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.OwnerID != "u1" || res.DeviceID == "" {
		t.Fatalf("unexpected claim result: %+v", res)
	}

	devs := store.Devices()
	if len(devs) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devs))
	}
	if devs[0].Name != "Kitchen iPad" || devs[0].Platform != "ipados" || devs[0].OwnerID != "u1" {
		t.Fatalf("unexpected device: %+v", devs[0])
	}

	// второй claim того же кода — терминальная запись
	if _, err := svc.ClaimEnrollment(ctx, created.Code, "Second", ""); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if got := len(store.Devices()); got != 1 {
		t.Fatalf("second claim must not create a device, have %d", got)
	}
}

func TestClaimNormalizesAndDefaults(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc := newTestService(store, time.Now().UTC())
	ctx := context.Background()

	created, err := svc.CreateEnrollment(ctx, testOwner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// код в нижнем регистре с пробелами, имя/платформа пустые
	if _, err := svc.ClaimEnrollment(ctx, "  "+strings.ToLower(created.Code)+" ", "", ""); err != nil {
		t.Fatalf("claim: %v", err)
	}
	dev := store.Devices()[0]
	if dev.Name != defaultDeviceName || dev.Platform != defaultPlatform {
		t.Fatalf("expected defaults, got name=%q platform=%q", dev.Name, dev.Platform)
	}
}

func TestClaimTruncatesLongInputs(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc := newTestService(store, time.Now().UTC())
	ctx := context.Background()

	created, _ := svc.CreateEnrollment(ctx, testOwner)
	longName := strings.Repeat("n", 200)
	longPlatform := strings.Repeat("p", 50)
	if _, err := svc.ClaimEnrollment(ctx, created.Code, longName, longPlatform); err != nil {
		t.Fatalf("claim: %v", err)
	}
	dev := store.Devices()[0]
	if len([]rune(dev.Name)) != maxDeviceNameLen {
		t.Fatalf("name not truncated: %d chars", len(dev.Name))
	}
	if len([]rune(dev.Platform)) != maxPlatformLen {
		t.Fatalf("platform not truncated: %d chars", len(dev.Platform))
	}
}

func TestClaimExpired(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, start)
	ctx := context.Background()

	created, _ := svc.CreateEnrollment(ctx, testOwner)

	svc.now = func() time.Time { return start.Add(CodeTTL + time.Second) }
	if _, err := svc.ClaimEnrollment(ctx, created.Code, "", ""); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	if got := len(store.Devices()); got != 0 {
		t.Fatalf("expired claim must not create a device, have %d", got)
	}
}

// untouchableStore проверяет, что до store дело не доходит.
type untouchableStore struct{ t *testing.T }

func (s untouchableStore) CreatePending(context.Context, *models.EnrollmentCode) error {
	s.t.Fatal("store must not be called")
	return nil
}
func (s untouchableStore) Claim(context.Context, string, string, string, time.Time) (*models.Device, error) {
	s.t.Fatal("store must not be called")
	return nil, nil
}
func (s untouchableStore) AppendEvent(context.Context, *models.EnrollmentEvent) error {
	s.t.Fatal("store must not be called")
	return nil
}

func TestClaimEmptyCodeSkipsStore(t *testing.T) {
	t.Parallel()

	svc := NewService(untouchableStore{t: t})
	for _, code := range []string{"", "   ", "\t\n"} {
		if _, err := svc.ClaimEnrollment(context.Background(), code, "", ""); !errors.Is(err, ErrEmptyCode) {
			t.Fatalf("code %q: expected ErrEmptyCode, got %v", code, err)
		}
	}
}

// conflictStore отдаёт заданное число коллизий, затем пропускает вставку.
type conflictStore struct {
	Store
	mu        sync.Mutex
	conflicts int
	attempts  int
}

func (s *conflictStore) CreatePending(ctx context.Context, rec *models.EnrollmentCode) error {
	s.mu.Lock()
	s.attempts++
	left := s.conflicts
	if left > 0 {
		s.conflicts--
	}
	s.mu.Unlock()
	if left > 0 {
		return ErrCodeConflict
	}
	return s.Store.CreatePending(ctx, rec)
}

func TestCreateRetriesOnConflict(t *testing.T) {
	t.Parallel()

	cs := &conflictStore{Store: NewMemStore(), conflicts: 2}
	svc := newTestService(cs, time.Now().UTC())

	if _, err := svc.CreateEnrollment(context.Background(), testOwner); err != nil {
		t.Fatalf("create should succeed on third attempt: %v", err)
	}
	if cs.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cs.attempts)
	}
}

func TestCreateExhaustedAfterBoundedRetries(t *testing.T) {
	t.Parallel()

	cs := &conflictStore{Store: NewMemStore(), conflicts: 100}
	svc := newTestService(cs, time.Now().UTC())

	if _, err := svc.CreateEnrollment(context.Background(), testOwner); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if cs.attempts != createAttempts {
		t.Fatalf("expected %d attempts, got %d", createAttempts, cs.attempts)
	}
}

func TestConcurrentClaimsSingleWinner(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc := newTestService(store, time.Now().UTC())
	ctx := context.Background()

	created, err := svc.CreateEnrollment(ctx, testOwner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.ClaimEnrollment(ctx, created.Code, "racer", "")
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, claimed int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyClaimed):
			claimed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || claimed != n-1 {
		t.Fatalf("expected 1 winner and %d losers, got %d/%d", n-1, ok, claimed)
	}
	if got := len(store.Devices()); got != 1 {
		t.Fatalf("expected exactly 1 device, got %d", got)
	}
}

// flakyEventStore валит только запись аудита.
type flakyEventStore struct{ Store }

func (s flakyEventStore) AppendEvent(context.Context, *models.EnrollmentEvent) error {
	return errors.New("audit sink down")
}

func TestClaimSurvivesEventFailure(t *testing.T) {
	t.Parallel()

	mem := NewMemStore()
	svc := newTestService(flakyEventStore{Store: mem}, time.Now().UTC())
	ctx := context.Background()

	created, _ := svc.CreateEnrollment(ctx, testOwner)
	if _, err := svc.ClaimEnrollment(ctx, created.Code, "", ""); err != nil {
		t.Fatalf("claim must not propagate audit failure: %v", err)
	}
}

func TestClaimAppendsAuditEvent(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	svc := newTestService(store, time.Now().UTC())
	ctx := context.Background()

	created, _ := svc.CreateEnrollment(ctx, testOwner)
	res, err := svc.ClaimEnrollment(ctx, created.Code, "Kitchen iPad", "")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	evs := store.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Type != EventDeviceEnrolled || ev.OwnerID != "u1" || ev.DeviceID != res.DeviceID {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
