package document

import (
	"context"
	"errors"
	"io"
	"time"

	documenterrors "peopledesk/internal/document/errors"
	"peopledesk/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Upload(ctx context.Context, companyID, actorID, employeeID, category, fileName string, r io.Reader, visibility string) (DocumentResponse, error)
	GetByEmployee(ctx context.Context, companyID, employeeID string) ([]DocumentResponse, error)
	Delete(ctx context.Context, companyID, documentID string) error
	DownloadURL(ctx context.Context, companyID, documentID string) (string, error)
}

type service struct {
	repo   Repository
	store  storage.Gateway
	logger *zap.Logger
}

func NewService(repo Repository, store storage.Gateway, logger ...*zap.Logger) Service {
	l := zap.L().Named("document.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.service")
	}
	return &service{repo: repo, store: store, logger: l}
}

func (s *service) Upload(ctx context.Context, companyID, actorID, employeeID, category, fileName string, r io.Reader, visibility string) (DocumentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return DocumentResponse{}, documenterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return DocumentResponse{}, documenterrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return DocumentResponse{}, documenterrors.ErrInvalidEmployeeID
	}

	if category == "" {
		category = CategoryOther
	}
	if !validCategory(category) {
		return DocumentResponse{}, documenterrors.ErrInvalidCategory
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, employeeID)
	if err != nil {
		return DocumentResponse{}, err
	}
	if !belongs {
		return DocumentResponse{}, documenterrors.ErrEmployeeNotFound
	}

	if visibility != storage.VisibilityPublic {
		visibility = storage.VisibilityPrivate
	}

	obj, err := s.store.Upload(ctx, r, "documents/"+companyID+"/"+employeeID, visibility)
	if err != nil {
		s.logger.Error("employee document upload failed", zap.Error(err))
		return DocumentResponse{}, documenterrors.ErrStorageUpload
	}

	d := &Document{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		Category:   category,
		FileName:   fileName,
		PublicID:   obj.PublicID,
		SecureURL:  obj.SecureURL,
		Format:     obj.Format,
		SizeBytes:  obj.Bytes,
		Visibility: visibility,
		UploadedBy: actorUUID,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		// The object is already in storage; remove it so metadata and
		// storage stay in step.
		if derr := s.store.Destroy(ctx, obj.PublicID); derr != nil {
			s.logger.Error("orphaned object cleanup failed",
				zap.String("public_id", obj.PublicID),
				zap.Error(derr),
			)
		}
		return DocumentResponse{}, err
	}

	s.logger.Info("employee document uploaded",
		zap.String("document_id", d.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("category", category),
	)
	return mapDocumentToResponse(*d), nil
}

func (s *service) GetByEmployee(ctx context.Context, companyID, employeeID string) ([]DocumentResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, documenterrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, documenterrors.ErrInvalidEmployeeID
	}

	docs, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		resp[i] = mapDocumentToResponse(d)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, companyID, documentID string) error {
	d, err := s.findDocument(ctx, companyID, documentID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, companyID, documentID); err != nil {
		return err
	}
	if err := s.store.Destroy(ctx, d.PublicID); err != nil {
		s.logger.Warn("storage destroy failed after metadata delete",
			zap.String("public_id", d.PublicID),
			zap.Error(err),
		)
	}

	s.logger.Info("employee document deleted", zap.String("document_id", documentID))
	return nil
}

func (s *service) DownloadURL(ctx context.Context, companyID, documentID string) (string, error) {
	d, err := s.findDocument(ctx, companyID, documentID)
	if err != nil {
		return "", err
	}
	return s.store.DownloadURL(ctx, d.PublicID, d.Visibility)
}

func (s *service) findDocument(ctx context.Context, companyID, documentID string) (*Document, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, documenterrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(documentID); err != nil {
		return nil, documenterrors.ErrDocumentNotFound
	}
	d, err := s.repo.FindByIDAndCompany(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documenterrors.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

func mapDocumentToResponse(d Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID.String(),
		EmployeeID: d.EmployeeID.String(),
		Category:   d.Category,
		FileName:   d.FileName,
		SecureURL:  d.SecureURL,
		Format:     d.Format,
		SizeBytes:  d.SizeBytes,
		Visibility: d.Visibility,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
}
