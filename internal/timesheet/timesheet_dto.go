package timesheet

type EntryInput struct {
	WorkDate    string `json:"work_date" binding:"required"`
	Hours       string `json:"hours" binding:"required"`
	ProjectCode string `json:"project_code"`
	Notes       string `json:"notes"`
}

type CreateTimesheetRequest struct {
	EmployeeID string       `json:"employee_id" binding:"required,uuid"`
	WeekStart  string       `json:"week_start" binding:"required"`
	Entries    []EntryInput `json:"entries" binding:"required,min=1,dive"`
}

type UpdateTimesheetRequest struct {
	Entries []EntryInput `json:"entries" binding:"required,min=1,dive"`
}

type DecideTimesheetRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Reason string `json:"reason"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
}

type EntryResponse struct {
	ID          string `json:"id"`
	WorkDate    string `json:"work_date"`
	Hours       string `json:"hours"`
	ProjectCode string `json:"project_code,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type TimesheetResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	EmployeeID     string          `json:"employee_id"`
	WeekStart      string          `json:"week_start"`
	Status         string          `json:"status"`
	TotalHours     string          `json:"total_hours"`
	Entries        []EntryResponse `json:"entries"`
	SubmittedAt    *string         `json:"submitted_at,omitempty"`
	ApprovedBy     *string         `json:"approved_by,omitempty"`
	ApprovedAt     *string         `json:"approved_at,omitempty"`
	DecisionReason *string         `json:"decision_reason,omitempty"`
	CreatedAt      string          `json:"created_at"`
}
