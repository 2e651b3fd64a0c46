package payroll

type CreateCycleRequest struct {
	PeriodStart string `json:"period_start" binding:"required"`
	PeriodEnd   string `json:"period_end" binding:"required"`
	Notes       string `json:"notes"`
}

type UpdateCycleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN PROCESSING CLOSED"`
}

type CycleResponse struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Status      string `json:"status"`
	TotalGross  string `json:"total_gross"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type DocumentResponse struct {
	ID         string  `json:"id"`
	CycleID    string  `json:"cycle_id"`
	EmployeeID *string `json:"employee_id,omitempty"`
	FileName   string  `json:"file_name"`
	SecureURL  string  `json:"secure_url"`
	Format     string  `json:"format,omitempty"`
	SizeBytes  int     `json:"size_bytes"`
	Visibility string  `json:"visibility"`
	CreatedAt  string  `json:"created_at"`
}
