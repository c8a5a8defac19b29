package booking

import (
	"context"
	"fmt"
	"sort"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// window is an available interval in minutes after midnight.
type window struct {
	start, end int
}

// ComputeAvailableSlots returns the bookable start times for a manicurist on
// date, each flagged with whether an active appointment already covers it.
// A date before today yields an empty result.
func (e *Engine) ComputeAvailableSlots(ctx context.Context, manicuristID uuid.UUID, date string, granularity int) ([]Slot, error) {
	if granularity <= 0 {
		granularity = e.granularity
	}
	day, err := utils.ParseDate(date, e.loc)
	if err != nil {
		return nil, validation("%v", err)
	}

	db := e.db.WithContext(ctx)
	if _, err := e.activeManicurist(db, manicuristID); err != nil {
		return nil, err
	}

	if date < utils.Today(e.now(), e.loc) {
		return []Slot{}, nil
	}

	windows, err := effectiveWindows(db, manicuristID, date, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	starts := slotStarts(windows, granularity)
	if len(starts) == 0 {
		return []Slot{}, nil
	}

	busy, err := blockingRanges(db, manicuristID, date)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(starts))
	for _, s := range starts {
		available := true
		for _, b := range busy {
			if utils.RangesOverlap(s, s+granularity, b.start, b.end) {
				available = false
				break
			}
		}
		slots = append(slots, Slot{Time: utils.FormatClock(s), Available: available})
	}
	return slots, nil
}

// effectiveWindows loads the open windows for one date. Specific-date
// records, when any exist, replace the recurring ones for that weekday.
func effectiveWindows(db *gorm.DB, manicuristID uuid.UUID, date string, weekday int) ([]window, error) {
	var records []models.AvailabilityWindow
	if err := db.Where("manicurist_id = ? AND specific_date = ?", manicuristID, date).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load date windows: %w", err)
	}
	if len(records) == 0 {
		if err := db.Where("manicurist_id = ? AND specific_date IS NULL AND day_of_week = ?", manicuristID, weekday).
			Find(&records).Error; err != nil {
			return nil, fmt.Errorf("load weekly windows: %w", err)
		}
	}

	out := make([]window, 0, len(records))
	for _, r := range records {
		if !r.IsAvailable {
			continue
		}
		start, err := utils.ParseClock(r.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(r.EndTime)
		if err != nil || end <= start {
			continue
		}
		out = append(out, window{start: start, end: end})
	}
	return out, nil
}

// slotStarts emits start minutes stepping by granularity from each window
// start while a full slot still fits, merged and ascending.
func slotStarts(windows []window, granularity int) []int {
	seen := make(map[int]struct{})
	for _, w := range windows {
		for t := w.start; t+granularity <= w.end; t += granularity {
			seen[t] = struct{}{}
		}
	}
	starts := make([]int, 0, len(seen))
	for t := range seen {
		starts = append(starts, t)
	}
	sort.Ints(starts)
	return starts
}

func blockingRanges(db *gorm.DB, manicuristID uuid.UUID, date string) ([]window, error) {
	var appts []models.Appointment
	if err := db.Select("start_time", "end_time").
		Where("manicurist_id = ? AND date = ? AND status IN ?", manicuristID, date, models.BlockingStatuses).
		Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	out := make([]window, 0, len(appts))
	for _, a := range appts {
		start, err := utils.ParseClock(a.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(a.EndTime)
		if err != nil {
			continue
		}
		out = append(out, window{start: start, end: end})
	}
	return out, nil
}
