package service

import (
	"context"
	"log"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	model "dogschool_backend/internals/features/dogschool/notifications/model"
)

// Command describes one outbound notification.
type Command struct {
	TargetUserID  uuid.UUID
	Type          string
	Title         string
	Message       string
	ReferenceID   *int64
	ReferenceType *string
	ActionURL     *string
	ActorID       *uuid.UUID
}

// Dispatcher persists notifications and pushes them to live SSE
// connections. Fire-and-forget: failures are logged, never propagated, so
// a broken notification can not fail the transition that produced it.
type Dispatcher struct {
	db       *gorm.DB
	registry *Registry
}

func NewDispatcher(db *gorm.DB, registry *Registry) *Dispatcher {
	return &Dispatcher{db: db, registry: registry}
}

func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) {
	if d == nil || cmd.TargetUserID == uuid.Nil {
		return
	}

	n := model.Notification{
		NotificationTargetUserID:  cmd.TargetUserID,
		NotificationType:          cmd.Type,
		NotificationTitle:         cmd.Title,
		NotificationMessage:       cmd.Message,
		NotificationReferenceID:   cmd.ReferenceID,
		NotificationReferenceType: cmd.ReferenceType,
		NotificationActionURL:     cmd.ActionURL,
		NotificationActorID:       cmd.ActorID,
	}

	// Persisted on the dispatcher's own connection, outside any caller
	// transaction.
	if err := d.db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("[NOTIFY] persist failed type=%s target=%s: %v", cmd.Type, cmd.TargetUserID, err)
		return
	}

	event, err := sonic.Marshal(n)
	if err != nil {
		log.Printf("[NOTIFY] encode failed id=%d: %v", n.NotificationID, err)
		return
	}
	if d.registry != nil {
		d.registry.SendIfPresent(cmd.TargetUserID, event)
	}
}
