package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	TypeNotificationSend = "notification:send"
	enqueueTimeout       = 5 * time.Second
)

type notificationPayload struct {
	Kind          string `json:"kind"`
	AppointmentID string `json:"appointmentId"`
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

var _ booking.Notifier = (*QueueNotifier)(nil)

// QueueNotifier pushes notifications onto the Redis task queue so they
// survive restarts and get retried. If enqueueing fails the notification
// is delivered in-process instead. Notify returns before Redis answers.
type QueueNotifier struct {
	client   enqueuer
	fallback booking.Notifier
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewQueueNotifier(client *asynq.Client, fallback booking.Notifier, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{client: client, fallback: fallback, logger: logger}
}

func NewNotificationTask(kind string, appointmentID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(notificationPayload{Kind: kind, AppointmentID: appointmentID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationSend, payload, asynq.MaxRetry(3)), nil
}

func (q *QueueNotifier) Notify(ctx context.Context, kind string, appt models.Appointment) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		ctx := context.WithoutCancel(ctx)
		if err := q.enqueue(ctx, kind, appt); err != nil {
			q.logger.Warn("enqueue notification failed, delivering inline",
				zap.String("kind", kind),
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err),
			)
			q.fallback.Notify(ctx, kind, appt)
		}
	}()
}

func (q *QueueNotifier) enqueue(ctx context.Context, kind string, appt models.Appointment) error {
	task, err := NewNotificationTask(kind, appt.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()
	_, err = q.client.EnqueueContext(ctx, task)
	return err
}

// Wait blocks until every pending enqueue has finished.
func (q *QueueNotifier) Wait() {
	q.wg.Wait()
}

// HandleTask is the asynq handler for TypeNotificationSend.
func (d *Dispatcher) HandleTask(ctx context.Context, task *asynq.Task) error {
	var p notificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	id, err := uuid.Parse(p.AppointmentID)
	if err != nil {
		return fmt.Errorf("invalid appointment id: %v: %w", err, asynq.SkipRetry)
	}

	var appt models.Appointment
	if err := d.db.WithContext(ctx).Preload("Manicurist").Preload("Service").
		First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("appointment %s: %w", id, asynq.SkipRetry)
		}
		return err
	}
	return d.Deliver(ctx, p.Kind, appt)
}

// Worker consumes notification tasks from Redis.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(opt asynq.RedisClientOpt, d *Dispatcher, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
		Logger: logger.Sugar(),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotificationSend, d.HandleTask)
	return &Worker{srv: srv, mux: mux}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start notification worker: %w", err)
	}
	<-ctx.Done()
	w.srv.Shutdown()
	return nil
}
