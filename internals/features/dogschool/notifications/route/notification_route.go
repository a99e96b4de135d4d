package route

import (
	"github.com/gofiber/fiber/v2"

	"dogschool_backend/internals/features/dogschool/notifications/controller"
)

func UserRoutes(r fiber.Router, ctl *controller.NotificationController) {
	r.Get("/notifications/stream", ctl.Stream)
	r.Get("/notifications", ctl.List)
	r.Post("/notifications/:id/read", ctl.MarkRead)
	r.Post("/notifications/read-all", ctl.MarkAllRead)
}
