package notify

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"nailsalon-backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "notify.db")), &gorm.Config{
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

func seedAppointment(t *testing.T, db *gorm.DB, date, status string) models.Appointment {
	t.Helper()
	m := models.Manicurist{Name: "Ana", IsActive: true}
	require.NoError(t, db.Create(&m).Error)
	s := models.Service{Name: "Gel manicure", Duration: 60, Price: 25, IsActive: true}
	require.NoError(t, db.Create(&s).Error)
	appt := models.Appointment{
		ManicuristID: m.ID,
		ServiceID:    s.ID,
		Date:         date,
		StartTime:    "10:00",
		EndTime:      "11:00",
		Status:       status,
		ClientName:   "Lucía",
		ClientPhone:  "+50212345678",
	}
	require.NoError(t, db.Create(&appt).Error)
	return appt
}

type fakeSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg Message) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	if s.err != nil {
		return Receipt{Channel: "sms"}, s.err
	}
	return Receipt{ProviderID: "SM123", Channel: "sms"}, nil
}

func (s *fakeSender) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}

type recordingNotifier struct {
	mu    sync.Mutex
	appts []models.Appointment
	kinds []string
}

func (n *recordingNotifier) Notify(_ context.Context, kind string, appt models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.appts = append(n.appts, appt)
}

var errProvider = errors.New("provider unavailable")
