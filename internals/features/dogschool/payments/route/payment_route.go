package route

import (
	"github.com/gofiber/fiber/v2"

	"dogschool_backend/internals/features/dogschool/payments/controller"
	"dogschool_backend/internals/middlewares"
)

// UserRoutes mounts the payment endpoints under the authenticated user
// group with the tighter payment rate limit.
func UserRoutes(r fiber.Router, ctl *controller.PaymentController) {
	pay := r.Group("/payments", middlewares.PaymentRateLimiter())
	pay.Post("/prepare", ctl.Prepare)
	pay.Post("/approve", ctl.Approve)
	pay.Post("/cancel", ctl.Cancel)
}
