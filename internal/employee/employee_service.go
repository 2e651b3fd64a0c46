package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	employeeerrors "peopledesk/internal/employee/errors"
	"peopledesk/internal/events"
	"peopledesk/internal/messaging/kafka"
	"peopledesk/internal/shared/contextutil"
	"peopledesk/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	dateLayout      = "2006-01-02"
	optionsCacheTTL = 10 * time.Minute
)

func optionsCacheKey(companyID string) string {
	return "employees:options:" + companyID
}

type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	Update(ctx context.Context, companyID, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, companyID, employeeID string) error
	GetByID(ctx context.Context, companyID, employeeID string) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	Options(ctx context.Context, companyID string) ([]EmployeeOption, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	rdb     *redis.Client
	outbox  kafka.OutboxRepository
	group   singleflight.Group
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	rdb *redis.Client,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counterRepo,
		rdb:     rdb,
		outbox:  outboxRepo,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidCompanyID
	}

	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
	}
	salary, err := decimal.NewFromString(req.BaseSalary)
	if err != nil || salary.IsNegative() {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil {
		mgr, err := s.repo.FindByIDAndCompany(ctx, companyID, *req.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EmployeeResponse{}, employeeerrors.ErrManagerNotFound
			}
			return EmployeeResponse{}, err
		}
		managerID = &mgr.ID
	}

	seq, err := s.counter.GetNextValue(ctx, companyID, "employee_number")
	if err != nil {
		return EmployeeResponse{}, err
	}

	salaryPeriod := req.SalaryPeriod
	if salaryPeriod == "" {
		salaryPeriod = "MONTHLY"
	}

	e := &Employee{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		EmployeeNumber: fmt.Sprintf("EMP-%05d", seq),
		FullName:       req.FullName,
		Email:          req.Email,
		EmploymentType: req.EmploymentType,
		Position:       req.Position,
		HireDate:       hireDate,
		BaseSalary:     salary,
		SalaryPeriod:   salaryPeriod,
		Status:         StatusActive,
		ManagerID:      managerID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, e); err != nil {
		s.logger.Error("employee create failed", zap.Error(err))
		return EmployeeResponse{}, mapDuplicateError(err)
	}

	if s.outbox != nil {
		payload, perr := json.Marshal(events.EmployeeCreatedEvent{
			EventType:  "employee.created",
			EmployeeID: e.ID.String(),
			CompanyID:  companyID,
			OccurredAt: time.Now().UTC(),
		})
		if perr != nil {
			return EmployeeResponse{}, perr
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "employee",
			AggregateID:   e.ID.String(),
			EventType:     "employee.created",
			Topic:         events.EmployeeCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			// The event shares the insert tx; dropping it silently would hide
			// the hire from downstream consumers, so creation backs out.
			s.logger.Error("employee outbox persist failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)

	s.logger.Info("employee created",
		zap.String("employee_id", e.ID.String()),
		zap.String("employee_number", e.EmployeeNumber),
	)
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, companyID, employeeID string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	e, err := s.findEmployee(ctx, companyID, employeeID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	salary, err := decimal.NewFromString(req.BaseSalary)
	if err != nil || salary.IsNegative() {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}

	var managerID *uuid.UUID
	if req.ManagerID != nil {
		mgr, err := s.repo.FindByIDAndCompany(ctx, companyID, *req.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EmployeeResponse{}, employeeerrors.ErrManagerNotFound
			}
			return EmployeeResponse{}, err
		}
		managerID = &mgr.ID
	}

	e.FullName = req.FullName
	e.EmploymentType = req.EmploymentType
	e.Position = req.Position
	e.BaseSalary = salary
	if req.SalaryPeriod != "" {
		e.SalaryPeriod = req.SalaryPeriod
	}
	e.Status = req.Status
	e.ManagerID = managerID

	if err := s.repo.Update(ctx, e); err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)
	return mapToResponse(*e), nil
}

func (s *service) Delete(ctx context.Context, companyID, employeeID string) error {
	if _, err := s.findEmployee(ctx, companyID, employeeID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, companyID, employeeID); err != nil {
		return err
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("employee deleted", zap.String("employee_id", employeeID))
	return nil
}

func (s *service) GetByID(ctx context.Context, companyID, employeeID string) (EmployeeResponse, error) {
	e, err := s.findEmployee(ctx, companyID, employeeID)
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, employeeerrors.ErrInvalidCompanyID
	}

	employees, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

// Options serves the dropdown list from redis when warm. Cache misses are
// collapsed through singleflight so a cold key triggers one query, not a
// stampede.
func (s *service) Options(ctx context.Context, companyID string) ([]EmployeeOption, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, employeeerrors.ErrInvalidCompanyID
	}

	key := optionsCacheKey(companyID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var options []EmployeeOption
			if jerr := json.Unmarshal(cached, &options); jerr == nil {
				return options, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("options cache read failed", zap.Error(err))
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		options, err := s.repo.FindOptions(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			if data, jerr := json.Marshal(options); jerr == nil {
				if serr := s.rdb.Set(ctx, key, string(data), optionsCacheTTL).Err(); serr != nil {
					s.logger.Warn("options cache write failed", zap.Error(serr))
				}
			}
		}
		return options, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]EmployeeOption), nil
}

func (s *service) invalidateOptions(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, optionsCacheKey(companyID)).Err(); err != nil {
		s.logger.Warn("options cache invalidation failed", zap.Error(err))
	}
}

func (s *service) findEmployee(ctx context.Context, companyID, employeeID string) (*Employee, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, employeeerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:             e.ID.String(),
		CompanyID:      e.CompanyID.String(),
		EmployeeNumber: e.EmployeeNumber,
		FullName:       e.FullName,
		Email:          e.Email,
		EmploymentType: e.EmploymentType,
		Position:       e.Position,
		HireDate:       e.HireDate.Format(dateLayout),
		BaseSalary:     e.BaseSalary.String(),
		SalaryPeriod:   e.SalaryPeriod,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
	if e.ManagerID != nil {
		v := e.ManagerID.String()
		resp.ManagerID = &v
	}
	if e.AccountID != nil {
		v := e.AccountID.String()
		resp.AccountID = &v
	}
	return resp
}
