package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	appmodel "dogschool_backend/internals/features/dogschool/applications/model"
	notifmodel "dogschool_backend/internals/features/dogschool/notifications/model"
	notifsvc "dogschool_backend/internals/features/dogschool/notifications/service"
	model "dogschool_backend/internals/features/dogschool/payments/model"
	helper "dogschool_backend/internals/helpers"
)

// PaymentService orchestrates orders against the external gateway and
// drives the application state machine to PAID and back.
type PaymentService struct {
	db            *gorm.DB
	gateway       PaymentGateway
	dispatcher    *notifsvc.Dispatcher
	paymentWindow time.Duration
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, dispatcher *notifsvc.Dispatcher, paymentWindowHours int) *PaymentService {
	if paymentWindowHours <= 0 {
		paymentWindowHours = 24
	}
	return &PaymentService{
		db:            db,
		gateway:       gateway,
		dispatcher:    dispatcher,
		paymentWindow: time.Duration(paymentWindowHours) * time.Hour,
	}
}

// GenMerchantUID builds the externally-visible order identifier.
func GenMerchantUID() string {
	u := strings.ToUpper(strings.Split(uuid.New().String(), "-")[0])
	return fmt.Sprintf("DOG-%s-%s", time.Now().Format("20060102-150405"), u)
}

type chargeRow struct {
	ApplicationID   int64                      `gorm:"column:application_id"`
	SessionID       int64                      `gorm:"column:application_session_id"`
	CreatedBy       uuid.UUID                  `gorm:"column:application_created_by"`
	Status          appmodel.ApplicationStatus `gorm:"column:application_status"`
	PaymentDeadline *time.Time                 `gorm:"column:application_payment_deadline"`
	Price           int                        `gorm:"column:training_session_price"`
}

func loadCharges(tx *gorm.DB, applicationIDs []int64) ([]chargeRow, error) {
	var rows []chargeRow
	err := tx.Raw(`
		SELECT a.application_id, a.application_session_id, a.application_created_by,
		       a.application_status, a.application_payment_deadline,
		       s.training_session_price
		  FROM training_course_applications a
		  JOIN training_sessions s
		    ON s.training_session_id = a.application_session_id
		   AND s.training_session_deleted_at IS NULL
		 WHERE a.application_id IN ?
		   AND a.application_deleted_at IS NULL`, applicationIDs).
		Scan(&rows).Error
	return rows, err
}

// PreparePayment creates the order for a set of the caller's accepted
// applications. A zero-cost selection short-circuits to PAID without any
// gateway involvement.
func (s *PaymentService) PreparePayment(ctx context.Context, userID uuid.UUID, applicationIDs []int64) (*model.OrderMaster, error) {
	if len(applicationIDs) == 0 {
		return nil, helper.ErrInvalidSelection("no applications selected for payment")
	}

	var order model.OrderMaster
	var free bool
	var cmds []notifsvc.Command

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charges, err := loadCharges(tx, applicationIDs)
		if err != nil {
			return err
		}
		if len(charges) != len(applicationIDs) {
			return helper.ErrNotFound("one or more applications do not exist")
		}

		now := time.Now()
		total := 0
		for _, ch := range charges {
			if ch.CreatedBy != userID {
				return helper.ErrUnauthorized("not the owner of application " +
					fmt.Sprint(ch.ApplicationID))
			}
			if ch.Status != appmodel.ApplicationStatusAccept {
				return helper.ErrInvalidState(fmt.Sprintf("application %d is not accepted", ch.ApplicationID))
			}
			if ch.PaymentDeadline != nil && ch.PaymentDeadline.Before(now) {
				return helper.ErrInvalidState(fmt.Sprintf("payment deadline of application %d has passed", ch.ApplicationID))
			}
			total += ch.Price
		}

		order = model.OrderMaster{
			OrderMerchantUID: GenMerchantUID(),
			OrderBuyerID:     userID,
			OrderTotalAmount: total,
			OrderStatus:      model.OrderStatusReadyToPay,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if order.OrderID == 0 {
			return helper.ErrOrderCreationFailed("order insert did not yield an id")
		}

		for _, ch := range charges {
			item := model.OrderItem{
				OrderItemOrderID:       order.OrderID,
				OrderItemApplicationID: ch.ApplicationID,
				OrderItemAmount:        ch.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		// Free course: no gateway leg at all.
		if total == 0 {
			free = true
			if err := s.markOrderPaid(tx, &order, nil, "free", time.Now(), applicationIDs); err != nil {
				return err
			}
			cmds = append(cmds, s.paidCommands(charges)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if free {
		s.dispatchAll(ctx, cmds)
	}
	return &order, nil
}

// ApprovePayment verifies the client-asserted amount against the stored
// total, confirms with the gateway, and only then flips order and
// applications to PAID. Everything after the amount check is wrapped into
// one PaymentApprovalFailed boundary: no partial paid state without a
// settled gateway transaction.
func (s *PaymentService) ApprovePayment(ctx context.Context, userID uuid.UUID, merchantUID, paymentKey string, amount int) (*model.OrderMaster, error) {
	order, err := s.loadOrder(ctx, merchantUID)
	if err != nil {
		return nil, err
	}
	if order.OrderBuyerID != userID {
		return nil, helper.ErrUnauthorized("not the buyer of this order")
	}
	if order.OrderStatus != model.OrderStatusReadyToPay && order.OrderStatus != model.OrderStatusPaymentPending {
		return nil, helper.ErrInvalidState("order is not payable")
	}
	if order.OrderTotalAmount != amount {
		return nil, helper.ErrAmountMismatch(
			fmt.Sprintf("asserted amount %d does not match order total %d", amount, order.OrderTotalAmount))
	}

	confirm, err := s.gateway.Confirm(ctx, paymentKey, merchantUID, amount)
	if err != nil {
		return nil, helper.ErrPaymentApprovalFailed("payment approval failed: " + err.Error())
	}

	var cmds []notifsvc.Command
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appIDs, err := s.orderApplicationIDs(tx, order.OrderID)
		if err != nil {
			return err
		}
		charges, err := loadCharges(tx, appIDs)
		if err != nil {
			return err
		}
		if err := s.markOrderPaid(tx, order, &paymentKey, confirm.Method, confirm.ApprovedAt, appIDs); err != nil {
			return err
		}
		cmds = append(cmds, s.paidCommands(charges)...)
		return nil
	})
	if err != nil {
		var ae *helper.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, helper.ErrPaymentApprovalFailed("payment approval failed: " + err.Error())
	}

	s.dispatchAll(ctx, cmds)
	return order, nil
}

// CancelPayment refunds part or all of a PAID order. Selecting a subset of
// application ids makes it a partial refund; an empty selection refunds
// everything. Refunded applications return to ACCEPT with a fresh payment
// deadline, so the buyer can retry or let the slot lapse.
func (s *PaymentService) CancelPayment(ctx context.Context, callerID uuid.UUID, merchantUID, reason string, applicationIDs []int64) error {
	order, err := s.loadOrder(ctx, merchantUID)
	if err != nil {
		return err
	}
	if order.OrderStatus != model.OrderStatusPaid && order.OrderStatus != model.OrderStatusPartialRefunded {
		return helper.ErrInvalidState("order is not in a refundable state")
	}
	if err := s.guardCanceler(ctx, order, callerID); err != nil {
		return err
	}

	allIDs, err := s.orderApplicationIDs(s.db.WithContext(ctx), order.OrderID)
	if err != nil {
		return err
	}
	if len(applicationIDs) == 0 {
		applicationIDs = allIDs
	}
	partial := len(applicationIDs) < len(allIDs)

	cancelAmount, err := s.sumItemAmounts(ctx, order.OrderID, applicationIDs)
	if err != nil {
		return err
	}

	var payment model.Payment
	if err := s.db.WithContext(ctx).
		Where("payment_order_id = ? AND payment_status = ?", order.OrderID, model.PaymentStatusPaid).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.ErrNotFound("no paid payment found for this order")
		}
		return err
	}

	paymentKey := order.OrderMerchantUID
	if payment.PaymentKey != nil {
		paymentKey = *payment.PaymentKey
	}

	var gwAmount *int
	if partial {
		gwAmount = &cancelAmount
	}
	if err := s.gateway.Cancel(ctx, paymentKey, reason, gwAmount); err != nil {
		return helper.ErrPaymentCancelFailed("payment cancel failed: " + err.Error())
	}

	var cmds []notifsvc.Command
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target := model.OrderStatusRefunded
		if partial {
			target = model.OrderStatusPartialRefunded
		}

		if err := tx.Model(&model.Payment{}).
			Where("payment_id = ?", payment.PaymentID).
			Update("payment_status", model.PaymentStatusCanceled).Error; err != nil {
			return err
		}
		if err := s.appendLog(tx, order.OrderID, &payment.PaymentID,
			string(order.OrderStatus), string(target),
			map[string]interface{}{"reason": reason, "cancel_amount": cancelAmount}); err != nil {
			return err
		}
		if err := tx.Model(&model.OrderMaster{}).
			Where("order_id = ?", order.OrderID).
			Updates(map[string]interface{}{
				"order_status":       target,
				"order_is_completed": false,
			}).Error; err != nil {
			return err
		}

		// Refunded applications drop back to ACCEPT; the freed slot
		// is picked up by the next scheduler pass, not here.
		deadline := time.Now().Add(s.paymentWindow)
		if err := tx.Model(&appmodel.TrainingCourseApplication{}).
			Where("application_id IN ? AND application_status = ?", applicationIDs, appmodel.ApplicationStatusPaid).
			Updates(map[string]interface{}{
				"application_status":           appmodel.ApplicationStatusAccept,
				"application_payment_deadline": deadline,
			}).Error; err != nil {
			return err
		}

		id := order.OrderID
		cmds = append(cmds, notifsvc.Command{
			TargetUserID:  order.OrderBuyerID,
			Type:          notifmodel.NotificationTypeRefundIssued,
			Title:         "Refund issued",
			Message:       reason,
			ReferenceID:   &id,
			ReferenceType: refType("order"),
			ActorID:       &callerID,
		})
		return nil
	})
	if err != nil {
		var ae *helper.AppError
		if errors.As(err, &ae) {
			return err
		}
		return helper.ErrPaymentCancelFailed("payment cancel failed: " + err.Error())
	}

	s.dispatchAll(ctx, cmds)
	return nil
}

// CancelPaidApplication is the PaymentCanceler hook used by the
// application lifecycle: refund the money leg of one PAID application
// before the application itself is cancelled.
func (s *PaymentService) CancelPaidApplication(ctx context.Context, userID uuid.UUID, applicationID int64) error {
	var item model.OrderItem
	err := s.db.WithContext(ctx).
		Joins("JOIN order_masters o ON o.order_id = order_items.order_item_order_id").
		Where("order_items.order_item_application_id = ? AND o.order_status IN ?",
			applicationID, []model.OrderStatus{model.OrderStatusPaid, model.OrderStatusPartialRefunded}).
		Order("order_items.order_item_id DESC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.ErrNotFound("no paid order found for this application")
		}
		return err
	}

	var order model.OrderMaster
	if err := s.db.WithContext(ctx).
		First(&order, "order_id = ?", item.OrderItemOrderID).Error; err != nil {
		return err
	}

	return s.CancelPayment(ctx, userID, order.OrderMerchantUID,
		"application cancelled by owner", []int64{applicationID})
}

/* ===================== internals ===================== */

func (s *PaymentService) loadOrder(ctx context.Context, merchantUID string) (*model.OrderMaster, error) {
	var order model.OrderMaster
	if err := s.db.WithContext(ctx).
		First(&order, "order_merchant_uid = ?", merchantUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ErrNotFound("order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (s *PaymentService) orderApplicationIDs(tx *gorm.DB, orderID int64) ([]int64, error) {
	var ids []int64
	err := tx.Model(&model.OrderItem{}).
		Where("order_item_order_id = ?", orderID).
		Pluck("order_item_application_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, helper.ErrNotFound("order has no items")
	}
	return ids, nil
}

func (s *PaymentService) sumItemAmounts(ctx context.Context, orderID int64, applicationIDs []int64) (int, error) {
	var total int
	err := s.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("order_item_order_id = ? AND order_item_application_id IN ?", orderID, applicationIDs).
		Select("COALESCE(SUM(order_item_amount), 0)").
		Scan(&total).Error
	return total, err
}

// guardCanceler allows the buyer, or the trainer of one of the order's
// sessions, to cancel.
func (s *PaymentService) guardCanceler(ctx context.Context, order *model.OrderMaster, callerID uuid.UUID) error {
	if order.OrderBuyerID == callerID {
		return nil
	}
	var n int64
	err := s.db.WithContext(ctx).Table("order_items oi").
		Joins("JOIN training_course_applications a ON a.application_id = oi.order_item_application_id").
		Joins("JOIN training_sessions ts ON ts.training_session_id = a.application_session_id").
		Joins("JOIN training_courses tc ON tc.training_course_id = ts.training_session_course_id").
		Where("oi.order_item_order_id = ? AND tc.training_course_trainer_id = ?", order.OrderID, callerID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return helper.ErrUnauthorized("not allowed to cancel this payment")
	}
	return nil
}

// markOrderPaid flips the order, its payment record, and the linked
// applications to PAID inside the caller's transaction.
func (s *PaymentService) markOrderPaid(tx *gorm.DB, order *model.OrderMaster, paymentKey *string, method string, approvedAt time.Time, applicationIDs []int64) error {
	from := string(order.OrderStatus)

	payment := model.Payment{
		PaymentOrderID:     order.OrderID,
		PaymentKey:         paymentKey,
		PaymentMerchantUID: order.OrderMerchantUID,
		PaymentMethod:      &method,
		PaymentStatus:      model.PaymentStatusPaid,
		PaymentApprovedAt:  &approvedAt,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return err
	}
	if err := s.appendLog(tx, order.OrderID, &payment.PaymentID, from, string(model.OrderStatusPaid),
		map[string]interface{}{"method": method}); err != nil {
		return err
	}

	if err := tx.Model(&model.OrderMaster{}).
		Where("order_id = ?", order.OrderID).
		Updates(map[string]interface{}{
			"order_status":       model.OrderStatusPaid,
			"order_is_completed": true,
		}).Error; err != nil {
		return err
	}
	order.OrderStatus = model.OrderStatusPaid
	order.OrderIsCompleted = true

	return tx.Model(&appmodel.TrainingCourseApplication{}).
		Where("application_id IN ? AND application_status = ?", applicationIDs, appmodel.ApplicationStatusAccept).
		Updates(map[string]interface{}{
			"application_status":           appmodel.ApplicationStatusPaid,
			"application_payment_deadline": nil,
		}).Error
}

// appendLog writes one immutable audit row per status transition.
func (s *PaymentService) appendLog(tx *gorm.DB, orderID int64, paymentID *int64, from, to string, payload map[string]interface{}) error {
	logRow := model.PaymentLog{
		PaymentLogOrderID:    orderID,
		PaymentLogPaymentID:  paymentID,
		PaymentLogFromStatus: from,
		PaymentLogToStatus:   to,
	}
	if payload != nil {
		raw, _ := sonic.Marshal(payload)
		logRow.PaymentLogPayload = datatypes.JSON(raw)
	}
	return tx.Create(&logRow).Error
}

func (s *PaymentService) paidCommands(charges []chargeRow) []notifsvc.Command {
	var cmds []notifsvc.Command
	for _, ch := range charges {
		id := ch.ApplicationID
		cmds = append(cmds, notifsvc.Command{
			TargetUserID:  ch.CreatedBy,
			Type:          notifmodel.NotificationTypePaymentDone,
			Title:         "Payment completed",
			Message:       "Your training session is booked.",
			ReferenceID:   &id,
			ReferenceType: refType("application"),
		})
	}
	return cmds
}

func (s *PaymentService) dispatchAll(ctx context.Context, cmds []notifsvc.Command) {
	for _, cmd := range cmds {
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(ctx, cmd)
		}
	}
}

func refType(s string) *string { return &s }
