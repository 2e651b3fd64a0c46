package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"peopledesk/internal/account"
	"peopledesk/internal/auth"
	autherrors "peopledesk/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "auth-test-secret"

type fakeAccountRepo struct {
	accounts  map[string]*account.Account
	employees map[string]*account.LinkedEmployee
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts:  map[string]*account.Account{},
		employees: map[string]*account.LinkedEmployee{},
	}
}

func (f *fakeAccountRepo) WithTx(tx *sql.Tx) account.Repository { return f }
func (f *fakeAccountRepo) Create(ctx context.Context, a *account.Account) error {
	f.accounts[a.ID.String()] = a
	return nil
}
func (f *fakeAccountRepo) Update(ctx context.Context, a *account.Account) error {
	f.accounts[a.ID.String()] = a
	return nil
}
func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	delete(f.accounts, id)
	return nil
}
func (f *fakeAccountRepo) FindByID(ctx context.Context, id string) (*account.Account, error) {
	if a, ok := f.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAccountRepo) FindAllByCompany(ctx context.Context, companyID string) ([]account.Account, error) {
	return nil, nil
}
func (f *fakeAccountRepo) IncrementFailedLogins(ctx context.Context, accountID string, maxAttempts int, lockUntil time.Time) error {
	if a, ok := f.accounts[accountID]; ok {
		a.FailedLoginAttempts++
		if a.FailedLoginAttempts >= maxAttempts {
			until := lockUntil
			a.LockedUntil = &until
		}
	}
	return nil
}
func (f *fakeAccountRepo) FindEmployee(ctx context.Context, employeeID string) (*account.LinkedEmployee, error) {
	if e, ok := f.employees[employeeID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAccountRepo) FindEmployeeByAccount(ctx context.Context, accountID string) (*account.LinkedEmployee, error) {
	for _, e := range f.employees {
		if e.AccountID != nil && e.AccountID.String() == accountID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeAccountRepo) LinkEmployee(ctx context.Context, employeeID string, accountID uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeAccountRepo) UnlinkEmployee(ctx context.Context, accountID string) error { return nil }

type fakeAccountService struct {
	account.Service

	failedLogins     []string
	successfulLogins []string
}

func (f *fakeAccountService) RecordFailedLogin(ctx context.Context, accountID string) error {
	f.failedLogins = append(f.failedLogins, accountID)
	return nil
}

func (f *fakeAccountService) RecordSuccessfulLogin(ctx context.Context, accountID string) error {
	f.successfulLogins = append(f.successfulLogins, accountID)
	return nil
}

type authFixture struct {
	repo     *fakeAccountRepo
	accounts *fakeAccountService
	svc      auth.Service
	acct     *account.Account
}

func newAuthFixture(t *testing.T, password string) *authFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)

	a := &account.Account{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		Email:        "jo@acme.test",
		Name:         "Jo Doe",
		Role:         "EMPLOYEE",
		IsActive:     true,
		PasswordHash: string(hash),
	}

	repo := newFakeAccountRepo()
	repo.accounts[a.ID.String()] = a

	accounts := &fakeAccountService{}
	svc := auth.NewService(repo, accounts, auth.TokenConfig{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})

	return &authFixture{repo: repo, accounts: accounts, svc: svc, acct: a}
}

func parseClaims(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	return claims
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success issues a signed pair", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		pair, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Bearer", pair.TokenType)

		claims := parseClaims(t, pair.AccessToken)
		assert.Equal(t, fx.acct.ID.String(), claims["account_id"])
		assert.Equal(t, fx.acct.CompanyID.String(), claims["company_id"])
		assert.Equal(t, "access", claims["token_type"])

		refreshClaims := parseClaims(t, pair.RefreshToken)
		assert.Equal(t, "refresh", refreshClaims["token_type"])

		assert.Equal(t, []string{fx.acct.ID.String()}, fx.accounts.successfulLogins)
		assert.Empty(t, fx.accounts.failedLogins)
	})

	t.Run("embeds linked employee id", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")
		accountID := fx.acct.ID
		employeeID := uuid.New()
		fx.repo.employees[employeeID.String()] = &account.LinkedEmployee{
			ID:        employeeID,
			AccountID: &accountID,
		}

		pair, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})

		assert.NoError(t, err)
		claims := parseClaims(t, pair.AccessToken)
		assert.Equal(t, employeeID.String(), claims["employee_id"])
	})

	t.Run("negative wrong password records the failure", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		_, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
		assert.Equal(t, []string{fx.acct.ID.String()}, fx.accounts.failedLogins)
	})

	t.Run("negative unknown email", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		_, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "nobody@acme.test",
			Password: "whatever",
		})

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
		assert.Empty(t, fx.accounts.failedLogins)
	})

	t.Run("negative locked account refused before password check", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")
		until := time.Now().UTC().Add(10 * time.Minute)
		fx.acct.LockedUntil = &until

		_, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})

		assert.ErrorIs(t, err, autherrors.ErrAccountLocked)
		assert.Empty(t, fx.accounts.successfulLogins)
	})

	t.Run("negative suspended account", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")
		fx.acct.IsActive = false

		_, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})

		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})

	t.Run("expired lockout window allows login again", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")
		until := time.Now().UTC().Add(-1 * time.Minute)
		fx.acct.LockedUntil = &until

		_, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})

		assert.NoError(t, err)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("rotates the pair", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		pair, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})
		assert.NoError(t, err)

		rotated, err := fx.svc.Refresh(context.Background(), pair.RefreshToken)

		assert.NoError(t, err)
		claims := parseClaims(t, rotated.AccessToken)
		assert.Equal(t, fx.acct.ID.String(), claims["account_id"])
	})

	t.Run("negative access token is not accepted", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		pair, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})
		assert.NoError(t, err)

		_, err = fx.svc.Refresh(context.Background(), pair.AccessToken)

		assert.ErrorIs(t, err, autherrors.ErrNotRefreshToken)
	})

	t.Run("negative suspension ends the session at refresh", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		pair, err := fx.svc.Login(context.Background(), auth.LoginRequest{
			Email:    "jo@acme.test",
			Password: "correct-horse-battery",
		})
		assert.NoError(t, err)

		fx.acct.IsActive = false

		_, err = fx.svc.Refresh(context.Background(), pair.RefreshToken)

		assert.ErrorIs(t, err, autherrors.ErrAccountDisabled)
	})

	t.Run("negative garbage token", func(t *testing.T) {
		fx := newAuthFixture(t, "correct-horse-battery")

		_, err := fx.svc.Refresh(context.Background(), "not-a-jwt")

		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})
}
