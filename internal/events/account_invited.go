package events

import "time"

const AccountLifecycleTopic = "hr.account.lifecycle.v1"

type AccountInvitedEvent struct {
	EventType  string    `json:"event_type"`
	AccountID  string    `json:"account_id"`
	EmployeeID string    `json:"employee_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
