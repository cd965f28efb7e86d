// Package notify defines the outbound messaging sink. The real chat transport
// lives outside this process; everything here treats delivery as fallible and
// fire-and-forget.
package notify

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier delivers one message to one recipient. A failed delivery must not
// affect deliveries to other recipients.
type Notifier interface {
	Send(ctx context.Context, recipientID int64, text string) error
}

type NoOpNotifier struct{}

func (NoOpNotifier) Send(ctx context.Context, recipientID int64, text string) error {
	return nil
}

// LogNotifier records deliveries instead of sending them. It is the default
// sink when no transport is wired in.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) Send(ctx context.Context, recipientID int64, text string) error {
	n.log.Info("notification",
		zap.Int64("recipient_id", recipientID),
		zap.String("text", text),
	)
	return nil
}

func provideDefault(log *zap.Logger) Notifier {
	return NewLogNotifier(log)
}

var Module = fx.Module("notify",
	fx.Provide(provideDefault),
)
