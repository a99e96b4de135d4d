package dto

type PrepareRequest struct {
	ApplicationIDs []int64 `json:"application_ids" validate:"required,min=1"`
}

type ApproveRequest struct {
	MerchantUID string `json:"merchant_uid" validate:"required"`
	PaymentKey  string `json:"payment_key" validate:"required"`
	Amount      int    `json:"amount" validate:"min=0"`
}

type CancelRequest struct {
	MerchantUID    string  `json:"merchant_uid" validate:"required"`
	Reason         string  `json:"reason" validate:"required,max=500"`
	ApplicationIDs []int64 `json:"application_ids"`
}
