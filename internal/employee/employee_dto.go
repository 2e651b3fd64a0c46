package employee

type CreateEmployeeRequest struct {
	FullName       string  `json:"full_name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	EmploymentType string  `json:"employment_type" binding:"required,oneof=FULL_TIME PART_TIME CONTRACTOR"`
	Position       string  `json:"position"`
	HireDate       string  `json:"hire_date" binding:"required"`
	BaseSalary     string  `json:"base_salary" binding:"required"`
	SalaryPeriod   string  `json:"salary_period" binding:"omitempty,oneof=MONTHLY YEARLY HOURLY"`
	ManagerID      *string `json:"manager_id" binding:"omitempty,uuid"`
}

type UpdateEmployeeRequest struct {
	FullName       string  `json:"full_name" binding:"required"`
	EmploymentType string  `json:"employment_type" binding:"required,oneof=FULL_TIME PART_TIME CONTRACTOR"`
	Position       string  `json:"position"`
	BaseSalary     string  `json:"base_salary" binding:"required"`
	SalaryPeriod   string  `json:"salary_period" binding:"omitempty,oneof=MONTHLY YEARLY HOURLY"`
	Status         string  `json:"status" binding:"required,oneof=ACTIVE INACTIVE TERMINATED ON_LEAVE"`
	ManagerID      *string `json:"manager_id" binding:"omitempty,uuid"`
}

type EmployeeResponse struct {
	ID             string  `json:"id"`
	CompanyID      string  `json:"company_id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	EmploymentType string  `json:"employment_type"`
	Position       string  `json:"position"`
	HireDate       string  `json:"hire_date"`
	BaseSalary     string  `json:"base_salary"`
	SalaryPeriod   string  `json:"salary_period"`
	Status         string  `json:"status"`
	ManagerID      *string `json:"manager_id,omitempty"`
	AccountID      *string `json:"account_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// EmployeeOption is the slim shape for dropdowns; it is what the options
// cache stores.
type EmployeeOption struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
}
