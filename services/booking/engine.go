package booking

import (
	"context"
	"errors"
	"time"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultGranularity = 60
	defaultLockTTL     = 10 * time.Second
	defaultLockWait    = 2 * time.Second
	lockRetryInterval  = 25 * time.Millisecond
)

// Notifier receives appointment events after they are committed. It must
// not block and must not fail the caller.
type Notifier interface {
	Notify(ctx context.Context, kind string, appt models.Appointment)
}

type Options struct {
	Granularity int
	Location    *time.Location
	AutoConfirm bool
	LockTTL     time.Duration
	// LockWait bounds how long a reservation waits for another request
	// holding the same day's lock before relying on the transaction alone.
	LockWait    time.Duration
	Locker      Locker
	Notifier    Notifier
	Logger      *zap.Logger
	Now         func() time.Time
}

// Engine computes availability and owns every appointment mutation.
type Engine struct {
	db          *gorm.DB
	granularity int
	loc         *time.Location
	autoConfirm bool
	lockTTL     time.Duration
	lockWait    time.Duration
	locker      Locker
	notifier    Notifier
	logger      *zap.Logger
	now         func() time.Time
}

func NewEngine(db *gorm.DB, opts Options) *Engine {
	e := &Engine{
		db:          db,
		granularity: opts.Granularity,
		loc:         opts.Location,
		autoConfirm: opts.AutoConfirm,
		lockTTL:     opts.LockTTL,
		lockWait:    opts.LockWait,
		locker:      opts.Locker,
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if e.granularity <= 0 {
		e.granularity = DefaultGranularity
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.lockTTL <= 0 {
		e.lockTTL = defaultLockTTL
	}
	if e.lockWait <= 0 {
		e.lockWait = defaultLockWait
	}
	if e.lockWait > e.lockTTL {
		e.lockWait = e.lockTTL
	}
	if e.locker == nil {
		e.locker = noopLocker{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) notify(ctx context.Context, kind string, appt models.Appointment) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, kind, appt)
}

func (e *Engine) activeManicurist(tx *gorm.DB, id uuid.UUID) (*models.Manicurist, error) {
	var m models.Manicurist
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("manicurist %s not found", id)
		}
		return nil, err
	}
	if !m.IsActive {
		return nil, notFound("manicurist %s not found", id)
	}
	return &m, nil
}
