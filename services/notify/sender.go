package notify

import (
	"context"

	"go.uber.org/zap"
)

type Message struct {
	To   string
	Body string
}

// Receipt identifies a message accepted by the provider.
type Receipt struct {
	ProviderID string
	Channel    string
}

// Sender hands a single message to a delivery provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no provider credentials are configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) (Receipt, error) {
	s.logger.Info("notification (not delivered)", zap.String("to", msg.To), zap.String("body", msg.Body))
	return Receipt{Channel: "log"}, nil
}
