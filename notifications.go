package sochx

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// NotificationEvent is the realtime event name clients subscribe to.
const NotificationEvent = "notification"

// NotificationDispatcher persists a notification and then pushes it to the
// recipient's realtime group. Persistence comes first: a recipient who is
// offline still finds the record on their next list. The push itself is
// best-effort.
type NotificationDispatcher struct {
	store       Notifications
	broadcaster Broadcaster
	logger      Logger
}

func NewNotificationDispatcher(store Notifications, broadcaster Broadcaster, logger Logger) *NotificationDispatcher {
	if logger == nil {
		logger = defLogger{}
	}
	return &NotificationDispatcher{
		store:       store,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Dispatch stores the notification and emits it to the recipient. A nil
// broadcaster degrades to store-only delivery.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, userID uuid.UUID, kind NotificationType, message string, payload map[string]any) (*Notification, error) {
	record, err := d.store.Create(ctx, &Notification{
		UserID:  userID,
		Type:    kind,
		Message: message,
		Payload: payload,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist notification")
	}

	if d.broadcaster != nil {
		d.broadcaster.Emit(UserGroup(userID.String()), NotificationEvent, record)
	}

	return record, nil
}
