package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"dogschool_backend/internals/features/dogschool/payments/dto"
	"dogschool_backend/internals/features/dogschool/payments/service"
	helper "dogschool_backend/internals/helpers"
)

var validate = validator.New()

type PaymentController struct {
	svc *service.PaymentService
}

func NewPaymentController(svc *service.PaymentService) *PaymentController {
	return &PaymentController{svc: svc}
}

// POST /api/u/payments/prepare
func (ctl *PaymentController) Prepare(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.PrepareRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	order, err := ctl.svc.PreparePayment(c.Context(), userID, req.ApplicationIDs)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "order prepared", order)
}

// POST /api/u/payments/approve
func (ctl *PaymentController) Approve(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	order, err := ctl.svc.ApprovePayment(c.Context(), userID, req.MerchantUID, req.PaymentKey, req.Amount)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "payment approved", order)
}

// POST /api/u/payments/cancel
func (ctl *PaymentController) Cancel(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromError(c, err)
	}

	var req dto.CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := ctl.svc.CancelPayment(c.Context(), userID, req.MerchantUID, req.Reason, req.ApplicationIDs); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "payment cancelled", nil)
}
