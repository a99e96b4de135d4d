package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"dogschool_backend/internals/features/dogschool/applications/dto"
	"dogschool_backend/internals/features/dogschool/applications/service"
	helper "dogschool_backend/internals/helpers"
)

var validate = validator.New()

type ApplicationController struct {
	svc *service.ApplicationService
}

func NewApplicationController(svc *service.ApplicationService) *ApplicationController {
	return &ApplicationController{svc: svc}
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id < 1 {
		return 0, helper.ErrBadRequest("invalid " + name)
	}
	return id, nil
}

/* ===================== user side ===================== */

// POST /api/u/applications
func (ctl *ApplicationController) Apply(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	dogID, err := uuid.Parse(req.DogID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid dog id")
	}

	app, err := ctl.svc.Apply(c.Context(), userID, dogID, req.SessionID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "application created", app)
}

// GET /api/u/applications
func (ctl *ApplicationController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctl.svc.ListMine(c.Context(), userID, c.Query("status"), paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "applications", fiber.Map{
		"items":      rows,
		"pagination": helper.BuildPagination(paging, total, len(rows)),
	})
}

// POST /api/u/applications/:id/cancel
func (ctl *ApplicationController) Cancel(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	if err := ctl.svc.Cancel(c.Context(), userID, appID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "application cancelled", nil)
}

/* ===================== trainer side ===================== */

// GET /api/t/courses/:id/applications
func (ctl *ApplicationController) ListForCourse(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid course id")
	}
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctl.svc.ListForCourse(c.Context(), trainerID, courseID, c.Query("status"), paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "applications", fiber.Map{
		"items":      rows,
		"pagination": helper.BuildPagination(paging, total, len(rows)),
	})
}

// POST /api/t/applications/:id/counseling-complete
func (ctl *ApplicationController) CompleteCounseling(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	if err := ctl.svc.CompleteCounseling(c.Context(), trainerID, appID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "counseling completed", nil)
}

// POST /api/t/applications/:id/approve
func (ctl *ApplicationController) Approve(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	outcome, err := ctl.svc.Approve(c.Context(), trainerID, appID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "application approved", fiber.Map{"status": outcome})
}

// POST /api/t/applications/:id/reject
func (ctl *ApplicationController) Reject(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	appID, err := paramID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := ctl.svc.Reject(c.Context(), trainerID, appID, req.Reason); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "application rejected", nil)
}

// POST /api/t/applications/bulk-approve
func (ctl *ApplicationController) BulkApprove(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.BulkApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := ctl.svc.BulkApprove(c.Context(), trainerID, courseID, req.ApplicationIDs); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "applications approved", nil)
}

// POST /api/t/applications/bulk-reject
func (ctl *ApplicationController) BulkReject(c *fiber.Ctx) error {
	trainerID, err := helper.RequireTrainer(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.BulkRejectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := ctl.svc.BulkReject(c.Context(), trainerID, courseID, req.ApplicationIDs, req.Reason); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "applications rejected", nil)
}
