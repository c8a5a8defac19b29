package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (e *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func TestQueueNotifierEnqueues(t *testing.T) {
	enq := &fakeEnqueuer{}
	fallback := &recordingNotifier{}
	q := &QueueNotifier{client: enq, fallback: fallback, logger: zap.NewNop()}
	appt := models.Appointment{ID: uuid.New()}

	q.Notify(context.Background(), models.NotificationBooked, appt)
	q.Wait()

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeNotificationSend, enq.tasks[0].Type())
	var p notificationPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &p))
	assert.Equal(t, models.NotificationBooked, p.Kind)
	assert.Equal(t, appt.ID.String(), p.AppointmentID)
	assert.Empty(t, fallback.kinds)
}

func TestQueueNotifierFallsBackInline(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	fallback := &recordingNotifier{}
	q := &QueueNotifier{client: enq, fallback: fallback, logger: zap.NewNop()}

	q.Notify(context.Background(), models.NotificationReminder, models.Appointment{ID: uuid.New()})
	q.Wait()

	assert.Equal(t, []string{models.NotificationReminder}, fallback.kinds)
}

// blockingEnqueuer holds every enqueue until released.
type blockingEnqueuer struct {
	release chan struct{}
	calls   chan struct{}
}

func (e *blockingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.calls <- struct{}{}
	select {
	case <-e.release:
		return &asynq.TaskInfo{ID: "task-1"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestQueueNotifierDoesNotBlockCaller(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	enq := &blockingEnqueuer{release: make(chan struct{}), calls: make(chan struct{}, 1)}
	fallback := &recordingNotifier{}
	q := &QueueNotifier{client: enq, fallback: fallback, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	q.Notify(ctx, models.NotificationBooked, models.Appointment{ID: uuid.New()})
	// the booking response has gone out while Redis is still answering
	cancel()

	select {
	case <-enq.calls:
	case <-time.After(time.Second):
		t.Fatal("enqueue was never attempted")
	}
	close(enq.release)
	q.Wait()

	assert.Empty(t, fallback.kinds)
}

func TestHandleTask(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	d := NewDispatcher(db, sender, zap.NewNop())
	appt := seedAppointment(t, db, "2030-01-07", models.StatusPending)

	task, err := NewNotificationTask(models.NotificationBooked, appt.ID)
	require.NoError(t, err)
	require.NoError(t, d.HandleTask(context.Background(), task))
	assert.Len(t, sender.messages(), 1)

	err = d.HandleTask(context.Background(), asynq.NewTask(TypeNotificationSend, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	missing, err := NewNotificationTask(models.NotificationBooked, uuid.New())
	require.NoError(t, err)
	assert.ErrorIs(t, d.HandleTask(context.Background(), missing), asynq.SkipRetry)
}
