package booking

import (
	"context"
	"testing"
	"time"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAppointments(t *testing.T) {
	f := newFixture(t)
	ana := f.manicurist(true)
	eva := f.manicurist(true)
	s := f.service(60)
	f.weekly(ana, time.Monday, "09:00", "18:00", true)
	f.weekly(eva, time.Monday, "09:00", "18:00", true)

	client := uuid.New()
	book := func(m models.Manicurist, date, start string) *models.Appointment {
		req := f.request(m, s, date, start)
		req.ClientID = &client
		appt, err := f.engine.CreateAppointment(context.Background(), req)
		require.NoError(t, err)
		return appt
	}
	book(ana, nextMonday, "09:00")
	late := book(ana, monday, "15:00")
	book(ana, monday, "10:00")
	book(eva, monday, "10:00")

	_, err := f.engine.ChangeStatus(context.Background(), late.ID, models.StatusCancelled)
	require.NoError(t, err)

	ctx := context.Background()

	page, err := f.engine.ListAppointments(ctx, AppointmentFilter{ManicuristID: &ana.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, monday, page.Items[0].Date)
	assert.Equal(t, "10:00", page.Items[0].StartTime)
	assert.Equal(t, "15:00", page.Items[1].StartTime)
	assert.Equal(t, nextMonday, page.Items[2].Date)
	require.NotNil(t, page.Items[0].Service)

	page, err = f.engine.ListAppointments(ctx, AppointmentFilter{
		ManicuristID: &ana.ID,
		Statuses:     []string{models.StatusPending},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.engine.ListAppointments(ctx, AppointmentFilter{From: monday, To: monday})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	page, err = f.engine.ListAppointments(ctx, AppointmentFilter{ClientID: &client, Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Items, 1)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)

	other := uuid.New()
	page, err = f.engine.ListAppointments(ctx, AppointmentFilter{ClientID: &other})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListAppointmentsValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ListAppointments(context.Background(), AppointmentFilter{Statuses: []string{"done"}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.engine.ListAppointments(context.Background(), AppointmentFilter{From: "yesterday"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetAppointment(t *testing.T) {
	f := newFixture(t)
	appt := f.booked("11:00")

	got, err := f.engine.GetAppointment(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, got.ID)
	require.NotNil(t, got.Manicurist)

	_, err = f.engine.GetAppointment(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
