package leave

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	PolicyID   string `json:"policy_id" binding:"required,uuid"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Unit       string `json:"unit" binding:"required,oneof=DAYS HOURS"`
	Quantity   string `json:"quantity" binding:"required"`
	Reason     string `json:"reason"`
	Draft      bool   `json:"draft"`
}

type UpdateLeaveRequest struct {
	PolicyID  string `json:"policy_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Unit      string `json:"unit" binding:"required,oneof=DAYS HOURS"`
	Quantity  string `json:"quantity" binding:"required"`
	Reason    string `json:"reason"`
}

type DecideLeaveRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Reason string `json:"reason"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name,omitempty"`
	PolicyID       string  `json:"policy_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Unit           string  `json:"unit"`
	Quantity       string  `json:"quantity"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	ExceedsBalance bool    `json:"exceeds_balance"`
	CreatedBy      string  `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
	ApprovedBy     *string `json:"approved_by,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`
	DecisionReason *string `json:"decision_reason,omitempty"`
}

type LeaveBalanceResponse struct {
	ID          string `json:"id"`
	PolicyID    string `json:"policy_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Opening     string `json:"opening"`
	Accrued     string `json:"accrued"`
	Taken       string `json:"taken"`
	Adjusted    string `json:"adjusted"`
	Closing     string `json:"closing"`
}

// BalanceSummaryResponse distinguishes "no balance configured" from an empty
// ledger instead of inventing data.
type BalanceSummaryResponse struct {
	EmployeeID string                 `json:"employee_id"`
	Configured bool                   `json:"configured"`
	Balances   []LeaveBalanceResponse `json:"balances"`
}

type CreatePolicyRequest struct {
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Unit          string `json:"unit" binding:"required,oneof=DAYS HOURS"`
	AccrualAmount string `json:"accrual_amount" binding:"required"`
	AccrualPeriod string `json:"accrual_period" binding:"required,oneof=MONTHLY YEARLY"`
	CarryOverCap  string `json:"carry_over_cap"`
}

type PolicyResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	AccrualAmount string `json:"accrual_amount"`
	AccrualPeriod string `json:"accrual_period"`
	CarryOverCap  string `json:"carry_over_cap"`
}
