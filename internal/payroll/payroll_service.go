package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"time"

	"peopledesk/internal/events"
	"peopledesk/internal/messaging/kafka"
	payrollerrors "peopledesk/internal/payroll/errors"
	"peopledesk/internal/shared/contextutil"
	"peopledesk/internal/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout     = "2006-01-02"
	cyclesCacheTTL = 5 * time.Minute
)

func cyclesCacheKey(companyID string) string {
	return "payroll:cycles:" + companyID
}

// Closed cycles are terminal; processing can fall back to open when a run
// is aborted.
func canTransitionCycle(from, to string) bool {
	switch from {
	case CycleStatusOpen:
		return to == CycleStatusProcessing || to == CycleStatusClosed
	case CycleStatusProcessing:
		return to == CycleStatusOpen || to == CycleStatusClosed
	default:
		return false
	}
}

type Service interface {
	CreateCycle(ctx context.Context, companyID string, req CreateCycleRequest) (CycleResponse, error)
	UpdateCycleStatus(ctx context.Context, companyID, cycleID, newStatus string) (CycleResponse, error)
	GetCycles(ctx context.Context, companyID string) ([]CycleResponse, error)
	GetCycle(ctx context.Context, companyID, cycleID string) (CycleResponse, error)
	RequestPayslips(ctx context.Context, companyID, actorID, cycleID string) error

	UploadDocument(ctx context.Context, companyID, actorID, cycleID string, employeeID *string, fileName string, r io.Reader, visibility string) (DocumentResponse, error)
	DeleteDocument(ctx context.Context, companyID, documentID string) error
	GetDocuments(ctx context.Context, companyID, cycleID string) ([]DocumentResponse, error)
	DocumentURL(ctx context.Context, companyID, documentID string) (string, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	store  storage.Gateway
	rdb    *redis.Client
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	store storage.Gateway,
	rdb *redis.Client,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		store:  store,
		rdb:    rdb,
		outbox: outboxRepo,
		logger: l,
	}
}

func (s *service) CreateCycle(ctx context.Context, companyID string, req CreateCycleRequest) (CycleResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return CycleResponse{}, payrollerrors.ErrInvalidCompanyID
	}

	start, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		return CycleResponse{}, payrollerrors.ErrInvalidPeriod
	}
	end, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil || !start.Before(end) {
		return CycleResponse{}, payrollerrors.ErrInvalidPeriod
	}

	c := &PayrollCycle{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      CycleStatusOpen,
		Notes:       req.Notes,
	}

	if err := s.repo.CreateCycle(ctx, c); err != nil {
		return CycleResponse{}, err
	}

	s.invalidateCycles(ctx, companyID)
	s.logger.Info("payroll cycle created",
		zap.String("cycle_id", c.ID.String()),
		zap.String("period_start", req.PeriodStart),
	)
	return mapCycleToResponse(*c), nil
}

func (s *service) UpdateCycleStatus(ctx context.Context, companyID, cycleID, newStatus string) (CycleResponse, error) {
	c, err := s.findCycle(ctx, companyID, cycleID)
	if err != nil {
		return CycleResponse{}, err
	}
	if !canTransitionCycle(c.Status, newStatus) {
		return CycleResponse{}, payrollerrors.ErrInvalidCycleTransition
	}

	c.Status = newStatus
	if err := s.repo.UpdateCycle(ctx, c); err != nil {
		return CycleResponse{}, err
	}

	s.invalidateCycles(ctx, companyID)
	s.logger.Info("payroll cycle status updated",
		zap.String("cycle_id", cycleID),
		zap.String("status", newStatus),
	)
	return mapCycleToResponse(*c), nil
}

// GetCycles serves the listing from redis when warm.
func (s *service) GetCycles(ctx context.Context, companyID string) ([]CycleResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, payrollerrors.ErrInvalidCompanyID
	}

	key := cyclesCacheKey(companyID)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var resp []CycleResponse
			if jerr := json.Unmarshal(cached, &resp); jerr == nil {
				return resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cycle cache read failed", zap.Error(err))
		}
	}

	cycles, err := s.repo.FindAllCycles(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]CycleResponse, len(cycles))
	for i, c := range cycles {
		resp[i] = mapCycleToResponse(c)
	}

	if s.rdb != nil {
		if data, jerr := json.Marshal(resp); jerr == nil {
			if serr := s.rdb.Set(ctx, key, data, cyclesCacheTTL).Err(); serr != nil {
				s.logger.Warn("cycle cache write failed", zap.Error(serr))
			}
		}
	}
	return resp, nil
}

func (s *service) GetCycle(ctx context.Context, companyID, cycleID string) (CycleResponse, error) {
	c, err := s.findCycle(ctx, companyID, cycleID)
	if err != nil {
		return CycleResponse{}, err
	}
	return mapCycleToResponse(*c), nil
}

// RequestPayslips queues payslip generation for the cycle through the
// outbox; the relay worker hands it to the downstream generator.
func (s *service) RequestPayslips(ctx context.Context, companyID, actorID, cycleID string) error {
	c, err := s.findCycle(ctx, companyID, cycleID)
	if err != nil {
		return err
	}
	if c.Status == CycleStatusClosed {
		return payrollerrors.ErrCycleClosed
	}

	payload, err := json.Marshal(events.PayrollPayslipRequestedEvent{
		EventType:   "payroll.payslip.requested",
		PayrollID:   c.ID.String(),
		CompanyID:   companyID,
		RequestedBy: actorID,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_cycle",
		AggregateID:   c.ID.String(),
		EventType:     "payroll.payslip.requested",
		Topic:         events.PayrollPayslipRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("payslip generation requested",
		zap.String("cycle_id", cycleID),
		zap.String("requested_by", actorID),
	)
	return nil
}

func (s *service) UploadDocument(ctx context.Context, companyID, actorID, cycleID string, employeeID *string, fileName string, r io.Reader, visibility string) (DocumentResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return DocumentResponse{}, payrollerrors.ErrInvalidCompanyID
	}

	c, err := s.findCycle(ctx, companyID, cycleID)
	if err != nil {
		return DocumentResponse{}, err
	}
	if c.Status == CycleStatusClosed {
		return DocumentResponse{}, payrollerrors.ErrCycleClosed
	}

	var employeeUUID *uuid.UUID
	if employeeID != nil {
		parsed, err := uuid.Parse(*employeeID)
		if err != nil {
			return DocumentResponse{}, payrollerrors.ErrInvalidCompanyID
		}
		employeeUUID = &parsed
	}

	if visibility != storage.VisibilityPublic {
		visibility = storage.VisibilityPrivate
	}

	obj, err := s.store.Upload(ctx, r, "payroll/"+companyID+"/"+cycleID, visibility)
	if err != nil {
		s.logger.Error("payroll document upload failed", zap.Error(err))
		return DocumentResponse{}, payrollerrors.ErrStorageUpload
	}

	d := &PayrollDocument{
		ID:         uuid.New(),
		CompanyID:  c.CompanyID,
		CycleID:    c.ID,
		EmployeeID: employeeUUID,
		FileName:   fileName,
		PublicID:   obj.PublicID,
		SecureURL:  obj.SecureURL,
		Format:     obj.Format,
		SizeBytes:  obj.Bytes,
		Visibility: visibility,
		UploadedBy: actorUUID,
	}

	if err := s.repo.CreateDocument(ctx, d); err != nil {
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

	s.logger.Info("payroll document uploaded",
		zap.String("document_id", d.ID.String()),
		zap.String("cycle_id", cycleID),
	)
	return mapDocumentToResponse(*d), nil
}

func (s *service) DeleteDocument(ctx context.Context, companyID, documentID string) error {
	d, err := s.findDocument(ctx, companyID, documentID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteDocument(ctx, companyID, documentID); err != nil {
		return err
	}
	if err := s.store.Destroy(ctx, d.PublicID); err != nil {
		s.logger.Warn("storage destroy failed after metadata delete",
			zap.String("public_id", d.PublicID),
			zap.Error(err),
		)
	}

	s.logger.Info("payroll document deleted", zap.String("document_id", documentID))
	return nil
}

func (s *service) GetDocuments(ctx context.Context, companyID, cycleID string) ([]DocumentResponse, error) {
	if _, err := s.findCycle(ctx, companyID, cycleID); err != nil {
		return nil, err
	}

	docs, err := s.repo.FindDocumentsByCycle(ctx, companyID, cycleID)
	if err != nil {
		return nil, err
	}

	resp := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		resp[i] = mapDocumentToResponse(d)
	}
	return resp, nil
}

func (s *service) DocumentURL(ctx context.Context, companyID, documentID string) (string, error) {
	d, err := s.findDocument(ctx, companyID, documentID)
	if err != nil {
		return "", err
	}
	return s.store.DownloadURL(ctx, d.PublicID, d.Visibility)
}

func (s *service) invalidateCycles(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cyclesCacheKey(companyID)).Err(); err != nil {
		s.logger.Warn("cycle cache invalidation failed", zap.Error(err))
	}
}

func (s *service) findCycle(ctx context.Context, companyID, cycleID string) (*PayrollCycle, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, payrollerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(cycleID); err != nil {
		return nil, payrollerrors.ErrInvalidCycleID
	}
	c, err := s.repo.FindCycle(ctx, companyID, cycleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrCycleNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *service) findDocument(ctx context.Context, companyID, documentID string) (*PayrollDocument, error) {
	if _, err := uuid.Parse(documentID); err != nil {
		return nil, payrollerrors.ErrDocumentNotFound
	}
	d, err := s.repo.FindDocument(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

func mapCycleToResponse(c PayrollCycle) CycleResponse {
	return CycleResponse{
		ID:          c.ID.String(),
		CompanyID:   c.CompanyID.String(),
		PeriodStart: c.PeriodStart.Format(dateLayout),
		PeriodEnd:   c.PeriodEnd.Format(dateLayout),
		Status:      c.Status,
		TotalGross:  c.TotalGross.String(),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func mapDocumentToResponse(d PayrollDocument) DocumentResponse {
	resp := DocumentResponse{
		ID:         d.ID.String(),
		CycleID:    d.CycleID.String(),
		FileName:   d.FileName,
		SecureURL:  d.SecureURL,
		Format:     d.Format,
		SizeBytes:  d.SizeBytes,
		Visibility: d.Visibility,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
	if d.EmployeeID != nil {
		v := d.EmployeeID.String()
		resp.EmployeeID = &v
	}
	return resp
}
