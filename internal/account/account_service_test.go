package account_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"peopledesk/internal/account"
	accounterrors "peopledesk/internal/account/errors"
	"peopledesk/internal/identity"
	"peopledesk/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeAccountRepository struct {
	accounts  map[string]*account.Account
	employees map[string]*account.LinkedEmployee

	createFn       func(ctx context.Context, a *account.Account) error
	linkEmployeeFn func(ctx context.Context, employeeID string, accountID uuid.UUID) (bool, error)
	deletedIDs     []string
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		accounts:  map[string]*account.Account{},
		employees: map[string]*account.LinkedEmployee{},
	}
}

func (f *fakeAccountRepository) WithTx(tx *sql.Tx) account.Repository { return f }

func (f *fakeAccountRepository) Create(ctx context.Context, a *account.Account) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, a); err != nil {
			return err
		}
	}
	cp := *a
	f.accounts[a.ID.String()] = &cp
	return nil
}

func (f *fakeAccountRepository) Update(ctx context.Context, a *account.Account) error {
	cp := *a
	f.accounts[a.ID.String()] = &cp
	return nil
}

func (f *fakeAccountRepository) Delete(ctx context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepository) FindByID(ctx context.Context, id string) (*account.Account, error) {
	if a, ok := f.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepository) IncrementFailedLogins(ctx context.Context, accountID string, maxAttempts int, lockUntil time.Time) error {
	a, ok := f.accounts[accountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.FailedLoginAttempts++
	if a.FailedLoginAttempts >= maxAttempts {
		until := lockUntil
		a.LockedUntil = &until
	}
	return nil
}

func (f *fakeAccountRepository) FindAllByCompany(ctx context.Context, companyID string) ([]account.Account, error) {
	var out []account.Account
	for _, a := range f.accounts {
		if a.CompanyID.String() == companyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepository) FindEmployee(ctx context.Context, employeeID string) (*account.LinkedEmployee, error) {
	if e, ok := f.employees[employeeID]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepository) FindEmployeeByAccount(ctx context.Context, accountID string) (*account.LinkedEmployee, error) {
	for _, e := range f.employees {
		if e.AccountID != nil && e.AccountID.String() == accountID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepository) LinkEmployee(ctx context.Context, employeeID string, accountID uuid.UUID) (bool, error) {
	if f.linkEmployeeFn != nil {
		return f.linkEmployeeFn(ctx, employeeID, accountID)
	}
	e, ok := f.employees[employeeID]
	if !ok || e.AccountID != nil {
		return false, nil
	}
	id := accountID
	e.AccountID = &id
	return true, nil
}

func (f *fakeAccountRepository) UnlinkEmployee(ctx context.Context, accountID string) error {
	for _, e := range f.employees {
		if e.AccountID != nil && e.AccountID.String() == accountID {
			e.AccountID = nil
		}
	}
	return nil
}

type fakeOutboxRepository struct {
	createErr error
	events    []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type fakeIdentityProvider struct {
	inviteFn func(ctx context.Context, email, name, role string) (identity.InvitedUser, error)
	resetFn  func(ctx context.Context, email string) error

	revokedIDs  []string
	resetEmails []string
}

func (f *fakeIdentityProvider) InviteUser(ctx context.Context, email, name, role string) (identity.InvitedUser, error) {
	if f.inviteFn != nil {
		return f.inviteFn(ctx, email, name, role)
	}
	return identity.InvitedUser{ExternalID: "ext-" + email, Email: email}, nil
}

func (f *fakeIdentityProvider) RevokeInvitation(ctx context.Context, externalID string) error {
	f.revokedIDs = append(f.revokedIDs, externalID)
	return nil
}

func (f *fakeIdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	f.resetEmails = append(f.resetEmails, email)
	if f.resetFn != nil {
		return f.resetFn(ctx, email)
	}
	return nil
}

func (f *fakeIdentityProvider) DisableUser(ctx context.Context, externalID string) error {
	return nil
}

type accountServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	repo     *fakeAccountRepository
	provider *fakeIdentityProvider
	service  account.Service
}

func setupAccountServiceTest(t *testing.T, lockout account.LockoutPolicy) *accountServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := newFakeAccountRepository()
	provider := &fakeIdentityProvider{}
	svc := account.NewService(db, repo, provider, lockout)

	return &accountServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     repo,
		provider: provider,
		service:  svc,
	}
}

func seedEmployee(repo *fakeAccountRepository, companyID uuid.UUID, email string) *account.LinkedEmployee {
	e := &account.LinkedEmployee{
		ID:        uuid.New(),
		CompanyID: companyID,
		FullName:  "Employee " + email,
		Email:     email,
	}
	repo.employees[e.ID.String()] = e
	return e
}

func TestAccountService_Invite(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("success links employee and creates pending account", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		emp := seedEmployee(deps.repo, companyID, "dina@acme.test")

		resp, err := deps.service.Invite(ctx, companyID.String(), account.InviteEmployeeRequest{
			EmployeeID: emp.ID.String(),
			Role:       account.RoleEmployee,
		})

		assert.NoError(t, err)
		assert.Equal(t, "dina@acme.test", resp.Email)
		assert.Equal(t, account.RoleEmployee, resp.Role)
		assert.False(t, resp.IsActive)
		assert.Equal(t, account.StatusPendingSetup, resp.AccountStatus)
		assert.NotNil(t, resp.EmployeeID)
		assert.Equal(t, emp.ID.String(), *resp.EmployeeID)

		stored := deps.repo.employees[emp.ID.String()]
		assert.NotNil(t, stored.AccountID)
		assert.Equal(t, resp.ID, stored.AccountID.String())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("second invite for same employee is a conflict", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		emp := seedEmployee(deps.repo, companyID, "rudi@acme.test")
		req := account.InviteEmployeeRequest{EmployeeID: emp.ID.String(), Role: account.RoleEmployee}

		_, err := deps.service.Invite(ctx, companyID.String(), req)
		assert.NoError(t, err)

		_, err = deps.service.Invite(ctx, companyID.String(), req)
		assert.ErrorIs(t, err, accounterrors.ErrEmployeeAlreadyLinked)
		assert.Len(t, deps.repo.accounts, 1)
	})

	t.Run("email collision with existing account creates nothing", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		emp := seedEmployee(deps.repo, companyID, "taken@acme.test")
		existing := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "taken@acme.test"}
		deps.repo.accounts[existing.ID.String()] = existing

		_, err := deps.service.Invite(ctx, companyID.String(), account.InviteEmployeeRequest{
			EmployeeID: emp.ID.String(),
			Role:       account.RoleEmployee,
		})

		assert.ErrorIs(t, err, accounterrors.ErrEmailAlreadyUsed)
		assert.Len(t, deps.repo.accounts, 1)
		assert.Empty(t, deps.provider.revokedIDs)
	})

	t.Run("link failure compensates account and invitation", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		emp := seedEmployee(deps.repo, companyID, "race@acme.test")
		deps.repo.linkEmployeeFn = func(ctx context.Context, employeeID string, accountID uuid.UUID) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Invite(ctx, companyID.String(), account.InviteEmployeeRequest{
			EmployeeID: emp.ID.String(),
			Role:       account.RoleEmployee,
		})

		assert.ErrorIs(t, err, accounterrors.ErrEmployeeAlreadyLinked)
		// Compensation ran in reverse: account deleted, invitation revoked.
		assert.Len(t, deps.repo.accounts, 0)
		assert.Len(t, deps.repo.deletedIDs, 1)
		assert.Equal(t, []string{"ext-race@acme.test"}, deps.provider.revokedIDs)
	})

	t.Run("identity provider failure is an upstream error with no side effects", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		emp := seedEmployee(deps.repo, companyID, "down@acme.test")
		deps.provider.inviteFn = func(ctx context.Context, email, name, role string) (identity.InvitedUser, error) {
			return identity.InvitedUser{}, errors.New("503 from provider")
		}

		_, err := deps.service.Invite(ctx, companyID.String(), account.InviteEmployeeRequest{
			EmployeeID: emp.ID.String(),
			Role:       account.RoleEmployee,
		})

		assert.ErrorIs(t, err, accounterrors.ErrIdentityProvider)
		assert.Len(t, deps.repo.accounts, 0)
		assert.Nil(t, deps.repo.employees[emp.ID.String()].AccountID)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		_, err := deps.service.Invite(ctx, companyID.String(), account.InviteEmployeeRequest{
			EmployeeID: uuid.New().String(),
			Role:       account.RoleAdmin,
		})

		assert.ErrorIs(t, err, accounterrors.ErrEmployeeNotFound)
	})

	t.Run("negative malformed company id", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		_, err := deps.service.Invite(ctx, "not-a-uuid", account.InviteEmployeeRequest{
			EmployeeID: uuid.New().String(),
			Role:       account.RoleEmployee,
		})

		assert.ErrorIs(t, err, accounterrors.ErrInvalidCompanyID)
	})

	t.Run("failed event persist backs the invite out", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := newFakeAccountRepository()
		provider := &fakeIdentityProvider{}
		outbox := &fakeOutboxRepository{createErr: errors.New("outbox insert refused")}
		svc := account.NewServiceWithOutbox(db, repo, provider, outbox, account.LockoutPolicy{})

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		emp := seedEmployee(repo, companyID, "event@acme.test")

		_, err = svc.Invite(ctx, companyID.String(), account.InviteEmployeeRequest{
			EmployeeID: emp.ID.String(),
			Role:       account.RoleEmployee,
		})

		assert.Error(t, err)
		// Compensation ran and the tx never committed: no account kept, the
		// invitation revoked, nothing published.
		assert.Len(t, repo.accounts, 0)
		assert.Equal(t, []string{"ext-event@acme.test"}, provider.revokedIDs)
		assert.Empty(t, outbox.events)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestAccountService_LinkUnlink(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("link existing then unlink is reversible", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		emp := seedEmployee(deps.repo, companyID, "solo@acme.test")
		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "solo@acme.test"}
		deps.repo.accounts[a.ID.String()] = a

		err := deps.service.LinkExisting(ctx, emp.ID.String(), a.ID.String())
		assert.NoError(t, err)
		assert.NotNil(t, deps.repo.employees[emp.ID.String()].AccountID)

		err = deps.service.Unlink(ctx, a.ID.String())
		assert.NoError(t, err)
		assert.Nil(t, deps.repo.employees[emp.ID.String()].AccountID)

		// Account row survives an unlink.
		_, ok := deps.repo.accounts[a.ID.String()]
		assert.True(t, ok)
	})

	t.Run("linking an already linked account is a conflict", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		empA := seedEmployee(deps.repo, companyID, "a@acme.test")
		empB := seedEmployee(deps.repo, companyID, "b@acme.test")
		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "a@acme.test"}
		deps.repo.accounts[a.ID.String()] = a

		assert.NoError(t, deps.service.LinkExisting(ctx, empA.ID.String(), a.ID.String()))

		err := deps.service.LinkExisting(ctx, empB.ID.String(), a.ID.String())
		assert.ErrorIs(t, err, accounterrors.ErrAccountAlreadyLinked)
	})

	t.Run("unlinking an unlinked account is a conflict", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "floating@acme.test"}
		deps.repo.accounts[a.ID.String()] = a

		err := deps.service.Unlink(ctx, a.ID.String())
		assert.ErrorIs(t, err, accounterrors.ErrAccountNotLinked)
	})
}

func TestAccountService_Passwords(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("set password hashes and clears reset markers", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		requested := time.Now().UTC().Add(-time.Hour)
		a := &account.Account{
			ID:                       uuid.New(),
			CompanyID:                companyID,
			Email:                    "pw@acme.test",
			IsActive:                 true,
			PasswordResetRequestedAt: &requested,
		}
		deps.repo.accounts[a.ID.String()] = a

		err := deps.service.SetPassword(ctx, a.ID.String(), "hunter2hunter2")
		assert.NoError(t, err)

		stored := deps.repo.accounts[a.ID.String()]
		assert.NotNil(t, stored.LastPasswordChangeAt)
		assert.Nil(t, stored.PasswordResetRequestedAt)
		assert.NotNil(t, stored.PasswordResetCompletedAt)
		assert.Equal(t, account.StatusActive, account.Status(stored))

		// Hash only: the raw field never matches the input password.
		assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")))
	})

	t.Run("short password is rejected", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "short@acme.test"}
		deps.repo.accounts[a.ID.String()] = a

		err := deps.service.SetPassword(ctx, a.ID.String(), "short")
		assert.ErrorIs(t, err, accounterrors.ErrPasswordTooShort)
	})

	t.Run("reset password stamps request and keeps is_active", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "reset@acme.test", IsActive: true}
		deps.repo.accounts[a.ID.String()] = a

		err := deps.service.ResetPassword(ctx, a.ID.String())
		assert.NoError(t, err)

		stored := deps.repo.accounts[a.ID.String()]
		assert.True(t, stored.IsActive)
		assert.NotNil(t, stored.PasswordResetRequestedAt)
		assert.Equal(t, account.StatusPasswordResetPending, account.Status(stored))
		assert.Equal(t, []string{"reset@acme.test"}, deps.provider.resetEmails)
	})

	t.Run("reset password surfaces provider failure as upstream", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "fail@acme.test"}
		deps.repo.accounts[a.ID.String()] = a
		deps.provider.resetFn = func(ctx context.Context, email string) error {
			return errors.New("smtp relay down")
		}

		err := deps.service.ResetPassword(ctx, a.ID.String())
		assert.ErrorIs(t, err, accounterrors.ErrIdentityProvider)
		assert.Nil(t, deps.repo.accounts[a.ID.String()].PasswordResetRequestedAt)
	})
}

func TestAccountService_Lockout(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("locks after configured threshold", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{
			MaxFailedAttempts: 3,
			LockoutDuration:   10 * time.Minute,
		})
		defer deps.db.Close()

		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "lock@acme.test", IsActive: true}
		deps.repo.accounts[a.ID.String()] = a

		for i := 0; i < 2; i++ {
			assert.NoError(t, deps.service.RecordFailedLogin(ctx, a.ID.String()))
			assert.Nil(t, deps.repo.accounts[a.ID.String()].LockedUntil)
		}

		assert.NoError(t, deps.service.RecordFailedLogin(ctx, a.ID.String()))
		stored := deps.repo.accounts[a.ID.String()]
		assert.Equal(t, 3, stored.FailedLoginAttempts)
		assert.NotNil(t, stored.LockedUntil)
		assert.True(t, account.IsLocked(stored, time.Now().UTC()))
	})

	t.Run("successful login resets counter and lock", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{
			MaxFailedAttempts: 2,
			LockoutDuration:   10 * time.Minute,
		})
		defer deps.db.Close()

		until := time.Now().UTC().Add(5 * time.Minute)
		a := &account.Account{
			ID:                  uuid.New(),
			CompanyID:           companyID,
			Email:               "unlock@acme.test",
			FailedLoginAttempts: 2,
			LockedUntil:         &until,
		}
		deps.repo.accounts[a.ID.String()] = a

		assert.NoError(t, deps.service.RecordSuccessfulLogin(ctx, a.ID.String()))

		stored := deps.repo.accounts[a.ID.String()]
		assert.Equal(t, 0, stored.FailedLoginAttempts)
		assert.Nil(t, stored.LockedUntil)
	})
}

func TestAccountService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("suspend and reactivate", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		a := &account.Account{ID: uuid.New(), CompanyID: companyID, Email: "s@acme.test", IsActive: true}
		deps.repo.accounts[a.ID.String()] = a

		resp, err := deps.service.UpdateStatus(ctx, a.ID.String(), account.StatusSuspended)
		assert.NoError(t, err)
		assert.False(t, resp.IsActive)
		assert.Equal(t, account.StatusSuspended, resp.AccountStatus)

		resp, err = deps.service.UpdateStatus(ctx, a.ID.String(), account.StatusActive)
		assert.NoError(t, err)
		assert.True(t, resp.IsActive)
		assert.Equal(t, account.StatusActive, resp.AccountStatus)
	})

	t.Run("rejects other statuses", func(t *testing.T) {
		deps := setupAccountServiceTest(t, account.LockoutPolicy{})
		defer deps.db.Close()

		_, err := deps.service.UpdateStatus(ctx, uuid.New().String(), account.StatusInactive)
		assert.ErrorIs(t, err, accounterrors.ErrInvalidStatus)
	})
}
