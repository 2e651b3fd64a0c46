package document

type DocumentResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	FileName   string `json:"file_name"`
	SecureURL  string `json:"secure_url"`
	Format     string `json:"format,omitempty"`
	SizeBytes  int    `json:"size_bytes"`
	Visibility string `json:"visibility"`
	CreatedAt  string `json:"created_at"`
}
