package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const (
	defaultOpenDays = 30
	maxOpenDays     = 90
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// ListOpenDates returns the dates in [from, from+days) on which the
// manicurist has at least one open window. Dates before today are skipped.
func (e *Engine) ListOpenDates(ctx context.Context, manicuristID uuid.UUID, from string, days int) ([]string, error) {
	if days <= 0 {
		days = defaultOpenDays
	}
	if days > maxOpenDays {
		days = maxOpenDays
	}

	if from != "" {
		if _, err := utils.ParseDate(from, time.UTC); err != nil {
			return nil, validation("%v", err)
		}
	}
	if today := utils.Today(e.now(), e.loc); from == "" || from < today {
		from = today
	}
	start, err := utils.ParseDate(from, time.UTC)
	if err != nil {
		return nil, validation("%v", err)
	}
	end := start.AddDate(0, 0, days)

	db := e.db.WithContext(ctx)
	if _, err := e.activeManicurist(db, manicuristID); err != nil {
		return nil, err
	}

	var records []models.AvailabilityWindow
	if err := db.Where("manicurist_id = ?", manicuristID).
		Where("specific_date IS NULL OR (specific_date >= ? AND specific_date < ?)", from, utils.FormatDate(end)).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}

	open := make(map[string]bool)

	var weekdays []rrule.Weekday
	seenDay := make(map[int]bool)
	for _, r := range records {
		if r.SpecificDate != nil || r.DayOfWeek == nil || !r.IsAvailable || seenDay[*r.DayOfWeek] {
			continue
		}
		if wd, ok := rruleWeekdays[time.Weekday(*r.DayOfWeek)]; ok {
			seenDay[*r.DayOfWeek] = true
			weekdays = append(weekdays, wd)
		}
	}
	if len(weekdays) > 0 {
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: weekdays,
			Dtstart:   start,
			Until:     end,
		})
		if err != nil {
			return nil, fmt.Errorf("build weekly rule: %w", err)
		}
		for _, t := range rule.Between(start, end, true) {
			if t.Before(end) {
				open[utils.FormatDate(t)] = true
			}
		}
	}

	// specific dates override the weekly pattern
	overrides := make(map[string]bool)
	for _, r := range records {
		if r.SpecificDate == nil {
			continue
		}
		overrides[*r.SpecificDate] = overrides[*r.SpecificDate] || r.IsAvailable
	}
	for date, available := range overrides {
		if available {
			open[date] = true
		} else {
			delete(open, date)
		}
	}

	dates := make([]string, 0, len(open))
	for d := range open {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}
