package workers

import (
	"context"
	"dartboard/contract"
	"dartboard/domain/dart"
	"log/slog"
	"time"
)

const DefaultSendTimeout = 5 * time.Second

// DeliveryWorker forwards outbound messages to the chat platform, one at a time,
// in the order the engine produced them. A failed send is logged and dropped.
type DeliveryWorker struct {
	log         *slog.Logger
	sender      contract.Sender
	outbound    <-chan dart.Message
	sendTimeout time.Duration
}

func NewDeliveryWorker(
	log *slog.Logger,
	sender contract.Sender,
	outbound <-chan dart.Message,
	sendTimeout time.Duration,
) *DeliveryWorker {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &DeliveryWorker{
		log:         log,
		sender:      sender,
		outbound:    outbound,
		sendTimeout: sendTimeout,
	}
}

func (w *DeliveryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping delivery")
			return nil
		case msg, ok := <-w.outbound:
			if !ok {
				w.log.Info("Outbound channel closed")
				return nil
			}
			w.deliver(ctx, msg)
		}
	}
}

func (w *DeliveryWorker) deliver(ctx context.Context, msg dart.Message) {
	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	if err := w.sender.Send(sendCtx, msg); err != nil {
		w.log.Warn("Failed to deliver message",
			"room", msg.Target.Room, "reply_to", msg.Target.ReplyTo, "error", err)
		return
	}
	w.log.Debug("Message delivered", "room", msg.Target.Room, "reply_to", msg.Target.ReplyTo)
}
