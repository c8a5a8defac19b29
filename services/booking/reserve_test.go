package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	appt, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "10:00"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, "10:00", appt.StartTime)
	assert.Equal(t, "11:00", appt.EndTime)
	assert.Equal(t, "+50212345678", appt.ClientPhone)
	assert.Nil(t, appt.NailStyleID)
	assert.Equal(t, []string{"nail-salon/reference/abc"}, []string(appt.ReferenceImageIDs))
	assert.Equal(t, []string{models.NotificationBooked}, f.notifier.kinds())

	var stored models.Appointment
	require.NoError(t, f.db.First(&stored, "id = ?", appt.ID).Error)
	assert.Equal(t, []string{"nail-salon/reference/abc"}, []string(stored.ReferenceImageIDs))
}

func TestCreateAppointmentAutoConfirm(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.AutoConfirm = true })
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	appt, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.NotNil(t, appt.ConfirmedAt)
	assert.Equal(t, []string{models.NotificationConfirmation}, f.notifier.kinds())
}

func TestCreateAppointmentWithPredefinedStyle(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	ns := f.nailStyle(true)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	req := f.request(m, s, monday, "09:00")
	req.NailStyle = NailStyleSelection{NailStyleID: &ns.ID}

	appt, err := f.engine.CreateAppointment(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, appt.NailStyleID)
	assert.Equal(t, ns.ID, *appt.NailStyleID)
	assert.Empty(t, appt.ReferenceImageIDs)
}

func TestCreateAppointmentBookedSlotBecomesUnavailable(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	appt, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "10:00"))
	require.NoError(t, err)

	slots, err := f.engine.ComputeAvailableSlots(context.Background(), m.ID, monday, 60)
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		{Time: "09:00", Available: true},
		{Time: "10:00", Available: false},
		{Time: "11:00", Available: true},
	}, slots)

	_, err = f.engine.ChangeStatus(context.Background(), appt.ID, models.StatusCancelled)
	require.NoError(t, err)

	slots, err = f.engine.ComputeAvailableSlots(context.Background(), m.ID, monday, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, availableTimes(slots))

	// the freed slot can be booked again
	_, err = f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "10:00"))
	assert.NoError(t, err)
}

func TestCreateAppointmentCompletedDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	appt, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "10:00"))
	require.NoError(t, err)
	_, err = f.engine.ChangeStatus(context.Background(), appt.ID, models.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.engine.ChangeStatus(context.Background(), appt.ID, models.StatusCompleted)
	require.NoError(t, err)

	slots, err := f.engine.ComputeAvailableSlots(context.Background(), m.ID, monday, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, availableTimes(slots))
}

func TestCreateAppointmentConflicts(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	hour := f.service(60)
	long := f.service(240)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	_, err := f.engine.CreateAppointment(context.Background(), f.request(m, hour, monday, "10:00"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		service models.Service
		start   string
	}{
		{name: "same slot", service: hour, start: "10:00"},
		{name: "service longer than window", service: long, start: "09:00"},
		{name: "runs past window end", service: hour, start: "12:00"},
		{name: "outside availability", service: hour, start: "15:00"},
		{name: "off the slot grid", service: hour, start: "09:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateAppointment(context.Background(), f.request(m, tt.service, monday, tt.start))
			assert.ErrorIs(t, err, ErrSlotConflict)
		})
	}

	// a two hour service starting at 09:00 would overlap the 10:00 booking
	twoHours := f.service(120)
	_, err = f.engine.CreateAppointment(context.Background(), f.request(m, twoHours, monday, "09:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCreateAppointmentClosedDate(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)
	f.onDate(m, monday, "09:00", "12:00", false)

	_, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "09:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	ns := f.nailStyle(true)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{name: "neither style nor images", mutate: func(r *BookingRequest) {
			r.NailStyle = NailStyleSelection{}
		}},
		{name: "both style and images", mutate: func(r *BookingRequest) {
			r.NailStyle = NailStyleSelection{NailStyleID: &ns.ID, ReferenceImageIDs: []string{"x"}}
		}},
		{name: "blank image id", mutate: func(r *BookingRequest) {
			r.NailStyle = NailStyleSelection{ReferenceImageIDs: []string{" "}}
		}},
		{name: "missing name", mutate: func(r *BookingRequest) { r.Contact.Name = " " }},
		{name: "missing phone", mutate: func(r *BookingRequest) { r.Contact.Phone = "" }},
		{name: "bad phone", mutate: func(r *BookingRequest) { r.Contact.Phone = "12" }},
		{name: "bad email", mutate: func(r *BookingRequest) { r.Contact.Email = "lucia" }},
		{name: "bad date", mutate: func(r *BookingRequest) { r.Date = "2030-13-01" }},
		{name: "past date", mutate: func(r *BookingRequest) { r.Date = yesterday }},
		{name: "bad time", mutate: func(r *BookingRequest) { r.StartTime = "9am" }},
		{name: "ends after midnight", mutate: func(r *BookingRequest) { r.StartTime = "23:30" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(m, s, monday, "09:00")
			tt.mutate(&req)
			_, err := f.engine.CreateAppointment(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.notifier.kinds())
}

func TestCreateAppointmentNotFound(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	inactive := f.manicurist(false)
	s := f.service(60)
	retired := f.nailStyle(false)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{name: "unknown manicurist", mutate: func(r *BookingRequest) { r.ManicuristID = uuid.New() }},
		{name: "inactive manicurist", mutate: func(r *BookingRequest) { r.ManicuristID = inactive.ID }},
		{name: "unknown service", mutate: func(r *BookingRequest) { r.ServiceID = uuid.New() }},
		{name: "inactive nail style", mutate: func(r *BookingRequest) {
			r.NailStyle = NailStyleSelection{NailStyleID: &retired.ID}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(m, s, monday, "09:00")
			tt.mutate(&req)
			_, err := f.engine.CreateAppointment(context.Background(), req)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCreateAppointmentInactiveService(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)
	require.NoError(t, f.db.Model(&s).Update("is_active", false).Error)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	_, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "09:00"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAppointmentConcurrent(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		starts   [2]string
		locked   bool
	}{
		{name: "same start", duration: 60, starts: [2]string{"10:00", "10:00"}},
		{name: "overlapping starts", duration: 90, starts: [2]string{"09:00", "10:00"}},
		{name: "overlapping starts with day lock", duration: 90, starts: [2]string{"09:00", "10:00"}, locked: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(o *Options) {
				if tt.locked {
					o.Locker = newMemLocker()
				}
			})
			m := f.manicurist(true)
			s := f.service(tt.duration)
			f.weekly(m, time.Monday, "09:00", "12:00", true)

			var wg sync.WaitGroup
			errs := make([]error, len(tt.starts))
			start := make(chan struct{})
			for i, at := range tt.starts {
				wg.Add(1)
				go func(i int, at string) {
					defer wg.Done()
					<-start
					_, errs[i] = f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, at))
				}(i, at)
			}
			close(start)
			wg.Wait()

			var ok, conflicts int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, ErrSlotConflict):
					conflicts++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, ok)
			assert.Equal(t, 1, conflicts)

			var active int64
			require.NoError(t, f.db.Model(&models.Appointment{}).
				Where("manicurist_id = ? AND date = ? AND status <> ?", m.ID, monday, models.StatusCancelled).
				Count(&active).Error)
			assert.EqualValues(t, 1, active)
		})
	}
}

type brokenLocker struct{}

func (brokenLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, errors.New("redis: connection refused")
}

func TestCreateAppointmentWhileDayLockHeld(t *testing.T) {
	locker := newMemLocker()
	f := newFixture(t, func(o *Options) {
		o.Locker = locker
		o.LockWait = 50 * time.Millisecond
	})
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	// another request is still reserving 09:00
	release, err := locker.Acquire(context.Background(), lockKey(m.ID, monday), time.Minute)
	require.NoError(t, err)
	defer release()

	slots, err := f.engine.ComputeAvailableSlots(context.Background(), m.ID, monday, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, availableTimes(slots))

	appt, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "11:00"))
	require.NoError(t, err)
	assert.Equal(t, "11:00", appt.StartTime)

	_, err = f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "11:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.True(t, locker.isHeld(lockKey(m.ID, monday)))
}

func TestCreateAppointmentWaitsForDayLock(t *testing.T) {
	locker := newMemLocker()
	f := newFixture(t, func(o *Options) { o.Locker = locker })
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	key := lockKey(m.ID, monday)
	release, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	go func() {
		time.Sleep(60 * time.Millisecond)
		release()
	}()

	_, err = f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, 2, locker.acquisitions())
	assert.False(t, locker.isHeld(key))
}

// cancellingLocker reports the lock as held and cancels the caller.
type cancellingLocker struct {
	cancel context.CancelFunc
}

func (l cancellingLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	l.cancel()
	return nil, ErrLockHeld
}

func TestCreateAppointmentLockWaitStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t, func(o *Options) {
		o.Locker = cancellingLocker{cancel: cancel}
		o.LockWait = 5 * time.Second
	})
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	_, err := f.engine.CreateAppointment(ctx, f.request(m, s, monday, "09:00"))
	assert.ErrorIs(t, err, context.Canceled)

	var count int64
	require.NoError(t, f.db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateAppointmentLockUnavailableFallsBackToTransaction(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Locker = brokenLocker{} })
	m := f.manicurist(true)
	s := f.service(60)
	f.weekly(m, time.Monday, "09:00", "12:00", true)

	_, err := f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "09:00"))
	require.NoError(t, err)
	_, err = f.engine.CreateAppointment(context.Background(), f.request(m, s, monday, "09:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestActiveSlotIndexRejectsDuplicateStart(t *testing.T) {
	f := newFixture(t)
	m := f.manicurist(true)
	s := f.service(60)

	first := models.Appointment{ManicuristID: m.ID, ServiceID: s.ID, Date: monday, StartTime: "09:00", EndTime: "10:00",
		Status: models.StatusPending, ClientName: "A", ClientPhone: "+15550000001"}
	require.NoError(t, f.db.Create(&first).Error)

	dup := first
	dup.ID = uuid.Nil
	err := f.db.Create(&dup).Error
	require.Error(t, err)

	// cancelled rows do not hold the slot
	cancelled := first
	cancelled.ID = uuid.Nil
	cancelled.Status = models.StatusCancelled
	assert.NoError(t, f.db.Create(&cancelled).Error)
}
