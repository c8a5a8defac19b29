package notify

import (
	"context"
	"testing"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestDispatcherDeliver(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	d := NewDispatcher(db, sender, zap.NewNop())
	appt := seedAppointment(t, db, "2030-01-07", models.StatusConfirmed)

	require.NoError(t, d.Deliver(context.Background(), models.NotificationConfirmation, appt))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+50212345678", msgs[0].To)
	assert.Equal(t, "Hi Lucía, your Gel manicure with Ana on 2030-01-07 at 10:00 is confirmed.", msgs[0].Body)

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry, "appointment_id = ?", appt.ID).Error)
	assert.Equal(t, "sent", entry.Status)
	assert.Equal(t, "SM123", entry.ProviderID)
	assert.Equal(t, models.NotificationConfirmation, entry.Kind)
}

func TestDispatcherDeliverFailure(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db, &fakeSender{err: errProvider}, zap.NewNop())
	appt := seedAppointment(t, db, "2030-01-07", models.StatusPending)

	err := d.Deliver(context.Background(), models.NotificationBooked, appt)
	assert.ErrorIs(t, err, booking.ErrUpstream)
	assert.ErrorIs(t, err, errProvider)

	var entry models.NotificationLog
	require.NoError(t, db.First(&entry, "appointment_id = ?", appt.ID).Error)
	assert.Equal(t, "failed", entry.Status)
	assert.Contains(t, entry.ErrorMessage, "provider unavailable")
}

func TestDispatcherRespectsSettings(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	d := NewDispatcher(db, sender, zap.NewNop())
	appt := seedAppointment(t, db, "2030-01-07", models.StatusConfirmed)

	require.NoError(t, db.Model(&models.SalonSettings{}).Where("id = ?", models.SalonSettingsID).
		Update("enable_reminders", false).Error)

	require.NoError(t, d.Deliver(context.Background(), models.NotificationReminder, appt))
	assert.Empty(t, sender.messages())

	require.NoError(t, d.Deliver(context.Background(), models.NotificationConfirmation, appt))
	assert.Len(t, sender.messages(), 1)

	require.NoError(t, db.Model(&models.SalonSettings{}).Where("id = ?", models.SalonSettingsID).
		Update("enable_notifications", false).Error)
	require.NoError(t, d.Deliver(context.Background(), models.NotificationConfirmation, appt))
	assert.Len(t, sender.messages(), 1)
}

func TestDispatcherSkipsInactiveTemplate(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	d := NewDispatcher(db, sender, zap.NewNop())
	appt := seedAppointment(t, db, "2030-01-07", models.StatusPending)

	require.NoError(t, db.Model(&models.NotificationTemplate{}).Where("kind = ?", models.NotificationBooked).
		Update("is_active", false).Error)

	require.NoError(t, d.Deliver(context.Background(), models.NotificationBooked, appt))
	assert.Empty(t, sender.messages())
}

func TestDispatcherNotifyDoesNotLeak(t *testing.T) {
	db := newTestDB(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sender := &fakeSender{err: errProvider}
	d := NewDispatcher(db, sender, zap.NewNop())
	appt := seedAppointment(t, db, "2030-01-07", models.StatusPending)

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, models.NotificationBooked, appt)
	// the request finishing must not abort delivery
	cancel()
	d.Wait()

	assert.Len(t, sender.messages(), 1)
}

func TestRender(t *testing.T) {
	appt := models.Appointment{
		ClientName: "Lucía",
		Date:       "2030-01-07",
		StartTime:  "09:30",
		Manicurist: &models.Manicurist{Name: "Ana"},
		Service:    &models.Service{Name: "Acrylic"},
	}
	got := Render("[ClientName]/[ManicuristName]/[ServiceName]/[Date]/[Time]", appt)
	assert.Equal(t, "Lucía/Ana/Acrylic/2030-01-07/09:30", got)

	assert.Equal(t, "Hi Lucía,  at 09:30", Render("Hi [ClientName], [ServiceName] at [Time]", models.Appointment{ClientName: "Lucía", StartTime: "09:30"}))
}
