package service

import (
	"context"
	"encoding/json"

	"anoa.com/boardinghouse/pkg/broadcast"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/metrics"
	"go.uber.org/zap"
)

// Channel is the single broadcast topic carrying every change notification.
const Channel = "notifications"

type Kind string

const (
	KindMember   Kind = "member"
	KindSchedule Kind = "schedule"
	KindPayment  Kind = "payment"
	KindBill     Kind = "bill"
	KindRepair   Kind = "repair"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Envelope is the message delivered to websocket clients.
type Envelope struct {
	Model  Kind   `json:"model"`
	Action Action `json:"action"`
	Data   any    `json:"data"`
}

// DeletedPayload is the data of a deleted envelope: the record is gone, only
// its id remains.
type DeletedPayload struct {
	ID uint `json:"id"`
}

// Notifier mirrors a committed mutation to live clients. It never fails the
// caller: publishing problems are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, action Action, data any)
	NotifyDeleted(ctx context.Context, kind Kind, id uint)
}

type notifier struct {
	publisher broadcast.Publisher
}

// NewNotifier returns a Notifier publishing on Channel. A nil publisher makes
// every call a no-op.
func NewNotifier(publisher broadcast.Publisher) Notifier {
	return &notifier{publisher: publisher}
}

func (n *notifier) Notify(ctx context.Context, kind Kind, action Action, data any) {
	if n.publisher == nil {
		return
	}

	log := logger.FromContext(ctx).With(
		zap.String("model", string(kind)),
		zap.String("action", string(action)),
	)

	payload, err := json.Marshal(Envelope{Model: kind, Action: action, Data: data})
	if err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(kind), string(action)).Inc()
		log.Warn("notification encode failed", zap.Error(err))
		return
	}

	// The mutation is already committed; a cancelled request must not stop
	// the notification from going out.
	if err := n.publisher.Publish(context.WithoutCancel(ctx), Channel, payload); err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(kind), string(action)).Inc()
		log.Warn("notification publish failed", zap.Error(err))
		return
	}

	metrics.NotificationsPublished.WithLabelValues(string(kind), string(action)).Inc()
}

func (n *notifier) NotifyDeleted(ctx context.Context, kind Kind, id uint) {
	n.Notify(ctx, kind, ActionDeleted, DeletedPayload{ID: id})
}
