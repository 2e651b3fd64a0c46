package company

type UpsertCompanyRequest struct {
	Name      string `json:"name" binding:"required"`
	LegalName string `json:"legal_name"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LegalName string `json:"legal_name"`
	CreatedAt string `json:"created_at"`
}
