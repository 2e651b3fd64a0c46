package company

import (
	"context"
	"errors"
	"time"

	companyerrors "peopledesk/internal/company/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req UpsertCompanyRequest) (CompanyResponse, error)
	Update(ctx context.Context, companyID string, req UpsertCompanyRequest) (CompanyResponse, error)
	GetByID(ctx context.Context, companyID string) (CompanyResponse, error)
	GetAll(ctx context.Context) ([]CompanyResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("company.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req UpsertCompanyRequest) (CompanyResponse, error) {
	c := &Company{
		ID:        uuid.New(),
		Name:      req.Name,
		LegalName: req.LegalName,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return CompanyResponse{}, err
	}

	s.logger.Info("company created", zap.String("company_id", c.ID.String()))
	return mapToResponse(*c), nil
}

func (s *service) Update(ctx context.Context, companyID string, req UpsertCompanyRequest) (CompanyResponse, error) {
	c, err := s.findCompany(ctx, companyID)
	if err != nil {
		return CompanyResponse{}, err
	}

	c.Name = req.Name
	c.LegalName = req.LegalName

	if err := s.repo.Update(ctx, c); err != nil {
		return CompanyResponse{}, err
	}
	return mapToResponse(*c), nil
}

func (s *service) GetByID(ctx context.Context, companyID string) (CompanyResponse, error) {
	c, err := s.findCompany(ctx, companyID)
	if err != nil {
		return CompanyResponse{}, err
	}
	return mapToResponse(*c), nil
}

func (s *service) GetAll(ctx context.Context) ([]CompanyResponse, error) {
	companies, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		resp[i] = mapToResponse(c)
	}
	return resp, nil
}

func (s *service) findCompany(ctx context.Context, companyID string) (*Company, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, companyerrors.ErrInvalidCompanyID
	}
	c, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyerrors.ErrCompanyNotFound
		}
		return nil, err
	}
	return c, nil
}

func mapToResponse(c Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		LegalName: c.LegalName,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
