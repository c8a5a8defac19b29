package notify

import (
	"context"
	"fmt"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderService sends a reminder for every active appointment on the
// next day, once per appointment.
type ReminderService struct {
	db       *gorm.DB
	notifier booking.Notifier
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, notifier booking.Notifier, logger *zap.Logger, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{db: db, notifier: notifier, logger: logger, loc: loc, now: time.Now}
}

// Run schedules the daily sweep with spec and blocks until ctx is done.
func (s *ReminderService) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.SendDailyReminders(ctx); err != nil {
			s.logger.Error("daily reminders failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	c.Start()
	s.logger.Info("reminder scheduler started", zap.String("schedule", spec))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// SendDailyReminders notifies every pending or confirmed appointment of
// tomorrow that has not had a reminder sent yet. It returns the number of
// reminders handed to the notifier.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (int, error) {
	tomorrow := utils.FormatDate(s.now().In(s.loc).AddDate(0, 0, 1))
	s.logger.Info("starting daily reminder processing", zap.String("date", tomorrow))

	reminded := s.db.Model(&models.NotificationLog{}).
		Select("appointment_id").
		Where("kind = ? AND status = ?", models.NotificationReminder, "sent")

	var appts []models.Appointment
	if err := s.db.WithContext(ctx).
		Preload("Manicurist").Preload("Service").
		Where("date = ? AND status IN ?", tomorrow, models.BlockingStatuses).
		Where("id NOT IN (?)", reminded).
		Order("start_time ASC").
		Find(&appts).Error; err != nil {
		return 0, fmt.Errorf("load appointments: %w", err)
	}

	for _, appt := range appts {
		s.notifier.Notify(ctx, models.NotificationReminder, appt)
	}
	s.logger.Info("daily reminder processing completed", zap.Int("count", len(appts)))
	return len(appts), nil
}
