package route

import (
	"github.com/gofiber/fiber/v2"

	"dogschool_backend/internals/features/dogschool/courses/controller"
)

// PublicRoutes are readable without authentication.
func PublicRoutes(r fiber.Router, ctl *controller.CourseController) {
	r.Get("/courses", ctl.List)
	r.Get("/courses/:tag", ctl.Detail)
}

// TrainerRoutes require the trainer role (enforced per handler on top of
// the JWT group middleware).
func TrainerRoutes(r fiber.Router, ctl *controller.CourseController) {
	r.Post("/courses", ctl.Create)
	r.Patch("/courses/:id", ctl.Update)
	r.Delete("/courses/:id", ctl.Delete)
}
