package route

import (
	"github.com/gofiber/fiber/v2"

	"dogschool_backend/internals/features/dogschool/applications/controller"
)

func UserRoutes(r fiber.Router, ctl *controller.ApplicationController) {
	r.Post("/applications", ctl.Apply)
	r.Get("/applications", ctl.ListMine)
	r.Post("/applications/:id/cancel", ctl.Cancel)
}

func TrainerRoutes(r fiber.Router, ctl *controller.ApplicationController) {
	r.Get("/courses/:id/applications", ctl.ListForCourse)
	r.Post("/applications/:id/counseling-complete", ctl.CompleteCounseling)
	r.Post("/applications/:id/approve", ctl.Approve)
	r.Post("/applications/:id/reject", ctl.Reject)
	r.Post("/applications/bulk-approve", ctl.BulkApprove)
	r.Post("/applications/bulk-reject", ctl.BulkReject)
}
