package controller

import (
	"bufio"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	model "dogschool_backend/internals/features/dogschool/notifications/model"
	"dogschool_backend/internals/features/dogschool/notifications/service"
	helper "dogschool_backend/internals/helpers"
)

const (
	sinkBuffer        = 16
	heartbeatInterval = 15 * time.Second
)

type NotificationController struct {
	db       *gorm.DB
	registry *service.Registry
}

func NewNotificationController(db *gorm.DB, registry *service.Registry) *NotificationController {
	return &NotificationController{db: db, registry: registry}
}

// GET /api/u/notifications/stream
//
// Server-sent events. One stream per user; a second connection replaces the
// first. Heartbeat comments keep proxies from closing the idle stream.
func (ctl *NotificationController) Stream(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sink := make(service.Sink, sinkBuffer)
	ctl.registry.Register(userID, sink)
	registry := ctl.registry

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer registry.Unregister(userID, sink)

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-sink:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", event); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// GET /api/u/notifications
func (ctl *NotificationController) List(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.db.WithContext(c.Context()).
		Model(&model.Notification{}).
		Where("notification_target_user_id = ?", userID)
	if c.QueryBool("unread") {
		q = q.Where("notification_is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromError(c, err)
	}

	var rows []model.Notification
	if err := q.Order("notification_id DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "notifications", fiber.Map{
		"items":      rows,
		"pagination": helper.BuildPagination(paging, total, len(rows)),
	})
}

// POST /api/u/notifications/:id/read
func (ctl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return helper.Error(c, fiber.StatusBadRequest, "invalid notification id")
	}

	res := ctl.db.WithContext(c.Context()).
		Model(&model.Notification{}).
		Where("notification_id = ? AND notification_target_user_id = ?", id, userID).
		Update("notification_is_read", true)
	if res.Error != nil {
		return helper.FromError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.FromError(c, helper.ErrNotFound("notification not found"))
	}
	return helper.Success(c, "notification read", nil)
}

// POST /api/u/notifications/read-all
func (ctl *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	res := ctl.db.WithContext(c.Context()).
		Model(&model.Notification{}).
		Where("notification_target_user_id = ? AND notification_is_read = ?", userID, false).
		Update("notification_is_read", true)
	if res.Error != nil {
		return helper.FromError(c, res.Error)
	}
	return helper.Success(c, "notifications read", fiber.Map{"updated": res.RowsAffected})
}
