package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	accounterrors "peopledesk/internal/account/errors"
	"peopledesk/internal/events"
	"peopledesk/internal/identity"
	"peopledesk/internal/messaging/kafka"
	"peopledesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LockoutPolicy governs the failed-login counter. Values come from
// configuration, not code.
type LockoutPolicy struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

type Service interface {
	Invite(ctx context.Context, companyID string, req InviteEmployeeRequest) (AccountResponse, error)
	LinkExisting(ctx context.Context, employeeID, accountID string) error
	Unlink(ctx context.Context, accountID string) error
	ResetPassword(ctx context.Context, accountID string) error
	SetPassword(ctx context.Context, accountID, newPassword string) error
	UpdateStatus(ctx context.Context, accountID, newStatus string) (AccountResponse, error)
	RecordFailedLogin(ctx context.Context, accountID string) error
	RecordSuccessfulLogin(ctx context.Context, accountID string) error

	GetAll(ctx context.Context, companyID string) ([]AccountResponse, error)
	GetByID(ctx context.Context, accountID string) (AccountResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	provider identity.Provider
	outbox   kafka.OutboxRepository
	lockout  LockoutPolicy
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	provider identity.Provider,
	lockout LockoutPolicy,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, provider, nil, lockout, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	provider identity.Provider,
	outboxRepo kafka.OutboxRepository,
	lockout LockoutPolicy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("account.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("account.service")
	}
	if lockout.MaxFailedAttempts <= 0 {
		lockout.MaxFailedAttempts = 5
	}
	if lockout.LockoutDuration <= 0 {
		lockout.LockoutDuration = 15 * time.Minute
	}
	return &service{
		db:       db,
		repo:     repo,
		provider: provider,
		outbox:   outboxRepo,
		lockout:  lockout,
		logger:   l,
	}
}

// Invite provisions a login-capable account for an employee. The flow is a
// saga: identity invitation, account row, employee link. Whatever step fails,
// compensation runs so no orphaned account or invitation survives.
func (s *service) Invite(ctx context.Context, companyID string, req InviteEmployeeRequest) (AccountResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("invite employee requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("role", req.Role),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return AccountResponse{}, accounterrors.ErrInvalidCompanyID
	}
	if req.Role != RoleAdmin && req.Role != RoleEmployee {
		return AccountResponse{}, accounterrors.ErrInvalidRole
	}

	emp, err := s.repo.FindEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccountResponse{}, accounterrors.ErrEmployeeNotFound
		}
		return AccountResponse{}, err
	}
	if emp.CompanyID != companyUUID {
		return AccountResponse{}, accounterrors.ErrEmployeeNotFound
	}
	if emp.AccountID != nil {
		return AccountResponse{}, accounterrors.ErrEmployeeAlreadyLinked
	}

	if _, err := s.repo.FindByEmail(ctx, emp.Email); err == nil {
		return AccountResponse{}, accounterrors.ErrEmailAlreadyUsed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AccountResponse{}, err
	}

	sg := newSaga(s.logger)

	invited, err := s.provider.InviteUser(ctx, emp.Email, emp.FullName, req.Role)
	if err != nil {
		s.logger.Error("identity invitation failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return AccountResponse{}, accounterrors.ErrIdentityProvider
	}
	sg.record("revoke-invitation", func(ctx context.Context) error {
		return s.provider.RevokeInvitation(ctx, invited.ExternalID)
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		sg.compensate(ctx)
		return AccountResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	a := &Account{
		ID:         uuid.New(),
		CompanyID:  emp.CompanyID,
		Email:      emp.Email,
		Name:       emp.FullName,
		Role:       req.Role,
		IsActive:   false,
		ExternalID: invited.ExternalID,
	}
	setStatus(a, StatusPendingSetup)

	if err := qtx.Create(ctx, a); err != nil {
		s.logger.Error("invite create account failed", zap.Error(err))
		sg.compensate(ctx)
		return AccountResponse{}, mapDuplicateError(err)
	}
	sg.record("delete-account", func(ctx context.Context) error {
		return s.repo.Delete(ctx, a.ID.String())
	})

	linked, err := qtx.LinkEmployee(ctx, req.EmployeeID, a.ID)
	if err != nil {
		sg.compensate(ctx)
		return AccountResponse{}, err
	}
	if !linked {
		// Lost the race against a concurrent invite.
		sg.compensate(ctx)
		return AccountResponse{}, accounterrors.ErrEmployeeAlreadyLinked
	}

	if s.outbox != nil {
		payload, err := json.Marshal(events.AccountInvitedEvent{
			EventType:  "account.invited",
			AccountID:  a.ID.String(),
			EmployeeID: req.EmployeeID,
			Role:       req.Role,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			sg.compensate(ctx)
			return AccountResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     rid,
			AggregateType: "account",
			AggregateID:   a.ID.String(),
			EventType:     "account.invited",
			Topic:         events.AccountLifecycleTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			// The event rides the same tx as the account row; without it the
			// invitation would be invisible downstream, so the whole invite
			// backs out.
			s.logger.Error("invite outbox persist failed", zap.Error(err))
			sg.compensate(ctx)
			return AccountResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("invite commit failed", zap.Error(err))
		sg.compensate(ctx)
		return AccountResponse{}, err
	}

	s.logger.Info("invite employee success",
		zap.String("account_id", a.ID.String()),
		zap.String("employee_id", req.EmployeeID),
	)

	resp := mapToResponse(*a)
	eid := req.EmployeeID
	resp.EmployeeID = &eid
	return resp, nil
}

func (s *service) LinkExisting(ctx context.Context, employeeID, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return accounterrors.ErrInvalidAccountID
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return accounterrors.ErrInvalidEmployeeID
	}

	a, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accounterrors.ErrAccountNotFound
		}
		return err
	}

	if _, err := s.repo.FindEmployeeByAccount(ctx, accountID); err == nil {
		return accounterrors.ErrAccountAlreadyLinked
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	emp, err := s.repo.FindEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accounterrors.ErrEmployeeNotFound
		}
		return err
	}
	if emp.AccountID != nil {
		return accounterrors.ErrEmployeeAlreadyLinked
	}

	linked, err := s.repo.LinkEmployee(ctx, employeeID, a.ID)
	if err != nil {
		return err
	}
	if !linked {
		return accounterrors.ErrEmployeeAlreadyLinked
	}

	s.logger.Info("account linked",
		zap.String("account_id", accountID),
		zap.String("employee_id", employeeID),
	)
	return nil
}

func (s *service) Unlink(ctx context.Context, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return accounterrors.ErrInvalidAccountID
	}

	if _, err := s.repo.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accounterrors.ErrAccountNotFound
		}
		return err
	}

	if _, err := s.repo.FindEmployeeByAccount(ctx, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accounterrors.ErrAccountNotLinked
		}
		return err
	}

	if err := s.repo.UnlinkEmployee(ctx, accountID); err != nil {
		return err
	}

	s.logger.Info("account unlinked", zap.String("account_id", accountID))
	return nil
}

func (s *service) ResetPassword(ctx context.Context, accountID string) error {
	a, err := s.findAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.provider.SendPasswordReset(ctx, a.Email); err != nil {
		s.logger.Error("password reset email failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return accounterrors.ErrIdentityProvider
	}

	now := time.Now().UTC()
	a.PasswordResetRequestedAt = &now
	setStatus(a, StatusPasswordResetPending)

	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	s.logger.Info("password reset requested", zap.String("account_id", accountID))
	return nil
}

func (s *service) SetPassword(ctx context.Context, accountID, newPassword string) error {
	if len(newPassword) < 8 {
		return accounterrors.ErrPasswordTooShort
	}

	a, err := s.findAccount(ctx, accountID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	a.PasswordHash = string(hashed)
	a.LastPasswordChangeAt = &now
	a.PasswordResetCompletedAt = &now
	a.PasswordResetRequestedAt = nil
	if a.IsActive {
		setStatus(a, StatusActive)
	} else {
		setStatus(a, StatusPasswordResetCompleted)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	s.logger.Info("password set", zap.String("account_id", accountID))
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, accountID, newStatus string) (AccountResponse, error) {
	if newStatus != StatusActive && newStatus != StatusSuspended {
		return AccountResponse{}, accounterrors.ErrInvalidStatus
	}

	a, err := s.findAccount(ctx, accountID)
	if err != nil {
		return AccountResponse{}, err
	}

	switch newStatus {
	case StatusActive:
		a.IsActive = true
		a.FailedLoginAttempts = 0
		a.LockedUntil = nil
	case StatusSuspended:
		a.IsActive = false
	}
	setStatus(a, newStatus)

	if err := s.repo.Update(ctx, a); err != nil {
		return AccountResponse{}, err
	}

	s.logger.Info("account status updated",
		zap.String("account_id", accountID),
		zap.String("status", newStatus),
	)
	return mapToResponse(*a), nil
}

func (s *service) RecordFailedLogin(ctx context.Context, accountID string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return accounterrors.ErrInvalidAccountID
	}

	// Single conditional UPDATE; concurrent failures each land their own
	// increment instead of racing a read-modify-write.
	lockUntil := time.Now().UTC().Add(s.lockout.LockoutDuration)
	if err := s.repo.IncrementFailedLogins(ctx, accountID, s.lockout.MaxFailedAttempts, lockUntil); err != nil {
		return err
	}

	a, err := s.findAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if IsLocked(a, time.Now().UTC()) {
		s.logger.Warn("account locked",
			zap.String("account_id", accountID),
			zap.Int("failed_attempts", a.FailedLoginAttempts),
		)
	}
	return nil
}

func (s *service) RecordSuccessfulLogin(ctx context.Context, accountID string) error {
	a, err := s.findAccount(ctx, accountID)
	if err != nil {
		return err
	}

	a.FailedLoginAttempts = 0
	a.LockedUntil = nil

	return s.repo.Update(ctx, a)
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]AccountResponse, error) {
	accounts, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = mapToResponse(a)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, accountID string) (AccountResponse, error) {
	a, err := s.findAccount(ctx, accountID)
	if err != nil {
		return AccountResponse{}, err
	}

	resp := mapToResponse(*a)
	if emp, err := s.repo.FindEmployeeByAccount(ctx, accountID); err == nil {
		eid := emp.ID.String()
		resp.EmployeeID = &eid
	}
	return resp, nil
}

// IsLocked reports whether the account is inside a lockout window.
func IsLocked(a *Account, now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

func (s *service) findAccount(ctx context.Context, accountID string) (*Account, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil, accounterrors.ErrInvalidAccountID
	}
	a, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accounterrors.ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func mapToResponse(a Account) AccountResponse {
	resp := AccountResponse{
		ID:                  a.ID.String(),
		CompanyID:           a.CompanyID.String(),
		Email:               a.Email,
		Name:                a.Name,
		Role:                a.Role,
		IsActive:            a.IsActive,
		AccountStatus:       Status(&a),
		FailedLoginAttempts: a.FailedLoginAttempts,
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
	}
	if a.LockedUntil != nil {
		v := a.LockedUntil.Format(time.RFC3339)
		resp.LockedUntil = &v
	}
	if a.LastPasswordChangeAt != nil {
		v := a.LastPasswordChangeAt.Format(time.RFC3339)
		resp.LastPasswordChangeAt = &v
	}
	if a.PasswordResetRequestedAt != nil {
		v := a.PasswordResetRequestedAt.Format(time.RFC3339)
		resp.PasswordResetRequestedAt = &v
	}
	return resp
}
