package account

type InviteEmployeeRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Role       string `json:"role" binding:"required,oneof=ADMIN EMPLOYEE"`
}

type LinkAccountRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE SUSPENDED"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

type AccountResponse struct {
	ID                       string  `json:"id"`
	CompanyID                string  `json:"company_id"`
	Email                    string  `json:"email"`
	Name                     string  `json:"name"`
	Role                     string  `json:"role"`
	IsActive                 bool    `json:"is_active"`
	AccountStatus            string  `json:"account_status"`
	EmployeeID               *string `json:"employee_id,omitempty"`
	FailedLoginAttempts      int     `json:"failed_login_attempts"`
	LockedUntil              *string `json:"locked_until,omitempty"`
	LastPasswordChangeAt     *string `json:"last_password_change_at,omitempty"`
	PasswordResetRequestedAt *string `json:"password_reset_requested_at,omitempty"`
	CreatedAt                string  `json:"created_at"`
}
