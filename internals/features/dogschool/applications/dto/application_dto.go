package dto

type ApplyRequest struct {
	DogID     string `json:"dog_id" validate:"required,uuid4"`
	SessionID int64  `json:"session_id" validate:"required,min=1"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type BulkApproveRequest struct {
	CourseID       string  `json:"course_id" validate:"required,uuid4"`
	ApplicationIDs []int64 `json:"application_ids" validate:"required,min=1"`
}

type BulkRejectRequest struct {
	CourseID       string  `json:"course_id" validate:"required,uuid4"`
	ApplicationIDs []int64 `json:"application_ids" validate:"required,min=1"`
	Reason         string  `json:"reason" validate:"required,max=500"`
}
