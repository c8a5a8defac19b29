package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondWithEngineError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", booking.ErrNotFound, http.StatusNotFound, "not_found"},
		{"validation", booking.Validation("bad date", nil), http.StatusBadRequest, "validation_error"},
		{"slot conflict", booking.ErrSlotConflict, http.StatusConflict, "slot_conflict"},
		{"invalid transition", booking.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"upstream", booking.Upstream("twilio down", errors.New("timeout")), http.StatusBadGateway, "upstream_failure"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			respondWithEngineError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestParamUUID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := paramUUID(c, "id", "service")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid service ID format")
}

func TestAvailabilityInputApply(t *testing.T) {
	monday := 1
	date := "2030-01-07"

	var w models.AvailabilityWindow
	msg := AvailabilityInput{IsRecurring: true, DayOfWeek: &monday, StartTime: "09:00", EndTime: "24:00"}.apply(&w)
	require.Empty(t, msg)
	assert.Equal(t, 1, *w.DayOfWeek)
	assert.Nil(t, w.SpecificDate)
	assert.Equal(t, "24:00", w.EndTime)
	assert.True(t, w.IsAvailable)

	closed := false
	msg = AvailabilityInput{SpecificDate: &date, StartTime: "09:00", EndTime: "12:00", IsAvailable: &closed}.apply(&w)
	require.Empty(t, msg)
	assert.Nil(t, w.DayOfWeek)
	assert.Equal(t, date, *w.SpecificDate)
	assert.False(t, w.IsAvailable)

	bad := []AvailabilityInput{
		{IsRecurring: true, StartTime: "09:00", EndTime: "12:00"},
		{IsRecurring: true, DayOfWeek: &monday, StartTime: "12:00", EndTime: "09:00"},
		{IsRecurring: true, DayOfWeek: &monday, StartTime: "24:00", EndTime: "24:00"},
		{StartTime: "09:00", EndTime: "12:00"},
		{SpecificDate: &[]string{"07-01-2030"}[0], StartTime: "09:00", EndTime: "12:00"},
	}
	for _, in := range bad {
		assert.NotEmpty(t, in.apply(&models.AvailabilityWindow{}), "%+v", in)
	}
}

func TestBuildCalendar(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	id := uuid.MustParse("8f0c7a52-6a43-4c55-9b0e-7d1f6f0f2a11")
	appts := []models.Appointment{{
		ID:          id,
		Date:        "2030-01-07",
		StartTime:   "10:00",
		EndTime:     "11:30",
		Status:      models.StatusConfirmed,
		ClientName:  "Eve",
		ClientPhone: "+34600000000",
		Service:     &models.Service{Name: "Gel manicure"},
	}}

	cal, err := buildCalendar(models.Manicurist{Name: "Ana"}, appts, loc, time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	out := cal.Serialize()

	assert.Contains(t, out, "UID:"+id.String()+"@nailsalon")
	assert.Contains(t, out, "SUMMARY:Gel manicure - Eve")
	// 10:00 CET is 09:00 UTC.
	assert.Contains(t, out, "DTSTART:20300107T090000Z")
	assert.Contains(t, out, "DTEND:20300107T103000Z")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
}
