package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypePayoutNotification  JobType = "payout_notification"
	JobTypeBookingConfirmation JobType = "booking_confirmation"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// PayoutNotificationJobPayload contains the payload for payout notification jobs
type PayoutNotificationJobPayload struct {
	PayoutID uint   `json:"payout_id"`
	Status   string `json:"status"`
}

// ToMap converts the payload to a map for storage
func (p PayoutNotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"payout_id": p.PayoutID,
		"status":    p.Status,
	}
}

// PayoutNotificationJobPayloadFromMap creates a payload from a map
func PayoutNotificationJobPayloadFromMap(data map[string]interface{}) (*PayoutNotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PayoutNotificationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// BookingConfirmationJobPayload contains the payload for booking confirmation jobs
type BookingConfirmationJobPayload struct {
	BookingID uint `json:"booking_id"`
}

// ToMap converts the payload to a map for storage
func (p BookingConfirmationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"booking_id": p.BookingID,
	}
}

// BookingConfirmationJobPayloadFromMap creates a payload from a map
func BookingConfirmationJobPayloadFromMap(data map[string]interface{}) (*BookingConfirmationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload BookingConfirmationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
