package booking

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Tuesday 2030-01-01 08:00 UTC.
var testNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

const (
	monday     = "2030-01-07"
	nextMonday = "2030-01-14"
	yesterday  = "2029-12-31"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "booking.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, kind string, _ models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type fixture struct {
	t        *testing.T
	db       *gorm.DB
	engine   *Engine
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	o := Options{
		Notifier: notifier,
		Now:      func() time.Time { return testNow },
	}
	for _, fn := range opts {
		fn(&o)
	}
	return &fixture{t: t, db: db, engine: NewEngine(db, o), notifier: notifier}
}

func (f *fixture) manicurist(active bool) models.Manicurist {
	f.t.Helper()
	m := models.Manicurist{Name: "Ana", IsActive: true}
	require.NoError(f.t, f.db.Create(&m).Error)
	if !active {
		require.NoError(f.t, f.db.Model(&m).Update("is_active", false).Error)
		m.IsActive = false
	}
	return m
}

func (f *fixture) service(duration int) models.Service {
	f.t.Helper()
	s := models.Service{Name: "Gel manicure", Price: 25, Duration: duration, IsActive: true}
	require.NoError(f.t, f.db.Create(&s).Error)
	return s
}

func (f *fixture) nailStyle(active bool) models.NailStyle {
	f.t.Helper()
	ns := models.NailStyle{Name: "French", IsActive: true}
	require.NoError(f.t, f.db.Create(&ns).Error)
	if !active {
		require.NoError(f.t, f.db.Model(&ns).Update("is_active", false).Error)
	}
	return ns
}

func (f *fixture) weekly(m models.Manicurist, day time.Weekday, start, end string, available bool) {
	f.t.Helper()
	d := int(day)
	w := models.AvailabilityWindow{
		ManicuristID: m.ID,
		DayOfWeek:    &d,
		StartTime:    start,
		EndTime:      end,
		IsAvailable:  available,
	}
	require.NoError(f.t, f.db.Create(&w).Error)
}

func (f *fixture) onDate(m models.Manicurist, date, start, end string, available bool) {
	f.t.Helper()
	d := date
	w := models.AvailabilityWindow{
		ManicuristID: m.ID,
		SpecificDate: &d,
		StartTime:    start,
		EndTime:      end,
		IsAvailable:  available,
	}
	require.NoError(f.t, f.db.Create(&w).Error)
}

func (f *fixture) request(m models.Manicurist, s models.Service, date, start string) BookingRequest {
	client := uuid.New()
	return BookingRequest{
		ManicuristID: m.ID,
		ClientID:     &client,
		ServiceID:    s.ID,
		Date:         date,
		StartTime:    start,
		NailStyle:    NailStyleSelection{ReferenceImageIDs: []string{"nail-salon/reference/abc"}},
		Contact:      Contact{Name: "Lucía", Phone: "+502 1234 5678", Email: "lucia@example.com"},
	}
}

func slotTimes(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time)
	}
	return out
}

func availableTimes(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			out = append(out, s.Time)
		}
	}
	return out
}

// memLocker is an in-process SET NX lock table.
type memLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired int
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}}
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrLockHeld
	}
	l.held[key] = true
	l.acquired++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

func (l *memLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

func (l *memLocker) acquisitions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acquired
}
