package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	helper "dogschool_backend/internals/helpers"
)

// ConfirmResult is what a successful gateway confirmation yields.
type ConfirmResult struct {
	Method     string
	ApprovedAt time.Time
	OrderName  string
}

// PaymentGateway is the external payment API. Both calls are synchronous
// HTTP with the server key as credential; transport errors and non-2xx
// responses surface as GatewayFailure, never as a hang (the client carries
// its own network timeout).
type PaymentGateway interface {
	Confirm(ctx context.Context, paymentKey, merchantUID string, amount int) (*ConfirmResult, error)
	Cancel(ctx context.Context, paymentKey, reason string, amount *int) error
}

// MidtransGateway implements PaymentGateway on the Midtrans Core API. The
// client pays on the frontend; Confirm verifies the transaction actually
// settled for the expected amount before we mark anything paid.
type MidtransGateway struct {
	client coreapi.Client
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) Confirm(ctx context.Context, paymentKey, merchantUID string, amount int) (*ConfirmResult, error) {
	resp, mErr := g.client.CheckTransaction(merchantUID)
	if mErr != nil {
		return nil, helper.ErrGatewayFailure("gateway check failed: " + mErr.Error())
	}

	status := strings.ToLower(resp.TransactionStatus)
	settled := status == "settlement" ||
		(status == "capture" && strings.ToLower(resp.FraudStatus) == "accept")
	if !settled {
		return nil, helper.ErrGatewayFailure("transaction is not settled: " + resp.TransactionStatus)
	}

	if paymentKey != "" && resp.TransactionID != paymentKey {
		return nil, helper.ErrGatewayFailure("payment key does not match the gateway transaction")
	}

	gross, err := strconv.ParseFloat(resp.GrossAmount, 64)
	if err != nil || int(gross) != amount {
		return nil, helper.ErrGatewayFailure(
			fmt.Sprintf("gateway amount %s does not match expected %d", resp.GrossAmount, amount))
	}

	approvedAt := time.Now()
	ts := resp.SettlementTime
	if ts == "" {
		ts = resp.TransactionTime
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", ts, time.Local); err == nil {
		approvedAt = t
	}

	return &ConfirmResult{
		Method:     resp.PaymentType,
		ApprovedAt: approvedAt,
		OrderName:  resp.OrderID,
	}, nil
}

func (g *MidtransGateway) Cancel(ctx context.Context, paymentKey, reason string, amount *int) error {
	if amount != nil {
		_, mErr := g.client.RefundTransaction(paymentKey, &coreapi.RefundReq{
			Amount: int64(*amount),
			Reason: reason,
		})
		if mErr != nil {
			return helper.ErrGatewayFailure("gateway refund failed: " + mErr.Error())
		}
		return nil
	}

	_, mErr := g.client.CancelTransaction(paymentKey)
	if mErr != nil {
		return helper.ErrGatewayFailure("gateway cancel failed: " + mErr.Error())
	}
	return nil
}
