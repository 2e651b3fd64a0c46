package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

type LeaveApprovedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	CompanyID      string    `json:"company_id"`
	EmployeeID     string    `json:"employee_id"`
	PolicyID       string    `json:"policy_id"`
	Quantity       string    `json:"quantity"`
	Unit           string    `json:"unit"`
	ApprovedBy     string    `json:"approved_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}
