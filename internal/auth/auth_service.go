package auth

import (
	"context"
	"errors"
	"time"

	"peopledesk/internal/account"
	autherrors "peopledesk/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenConfig comes from the environment; see app.LoadConfig.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPairResponse, error)
	Profile(ctx context.Context, accountID string) (ProfileResponse, error)
}

type service struct {
	repo     account.Repository
	accounts account.Service
	tokens   TokenConfig
	logger   *zap.Logger
}

func NewService(
	repo account.Repository,
	accounts account.Service,
	tokens TokenConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if tokens.AccessTTL <= 0 {
		tokens.AccessTTL = 15 * time.Minute
	}
	if tokens.RefreshTTL <= 0 {
		tokens.RefreshTTL = 7 * 24 * time.Hour
	}
	return &service{repo: repo, accounts: accounts, tokens: tokens, logger: l}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenPairResponse, error) {
	a, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPairResponse{}, autherrors.ErrInvalidCredentials
		}
		return TokenPairResponse{}, err
	}

	// Lockout is checked before the hash comparison so a locked account
	// leaks nothing about password correctness.
	if account.IsLocked(a, time.Now().UTC()) {
		s.logger.Warn("login refused, account locked", zap.String("account_id", a.ID.String()))
		return TokenPairResponse{}, autherrors.ErrAccountLocked
	}
	if !a.IsActive {
		s.logger.Warn("login refused, account disabled", zap.String("account_id", a.ID.String()))
		return TokenPairResponse{}, autherrors.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		if rerr := s.accounts.RecordFailedLogin(ctx, a.ID.String()); rerr != nil {
			s.logger.Error("failed-login bookkeeping failed", zap.Error(rerr))
		}
		return TokenPairResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := s.accounts.RecordSuccessfulLogin(ctx, a.ID.String()); err != nil {
		s.logger.Error("successful-login bookkeeping failed", zap.Error(err))
	}

	s.logger.Info("login success", zap.String("account_id", a.ID.String()))
	return s.issuePair(ctx, a)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenPairResponse, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return TokenPairResponse{}, err
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "refresh" {
		return TokenPairResponse{}, autherrors.ErrNotRefreshToken
	}

	accountID, _ := claims["account_id"].(string)
	a, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPairResponse{}, autherrors.ErrInvalidToken
		}
		return TokenPairResponse{}, err
	}

	// Suspension takes effect at the next refresh at the latest.
	if !a.IsActive {
		return TokenPairResponse{}, autherrors.ErrAccountDisabled
	}
	if account.IsLocked(a, time.Now().UTC()) {
		return TokenPairResponse{}, autherrors.ErrAccountLocked
	}

	return s.issuePair(ctx, a)
}

func (s *service) Profile(ctx context.Context, accountID string) (ProfileResponse, error) {
	resp, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return ProfileResponse{}, err
	}

	return ProfileResponse{
		AccountID:  resp.ID,
		CompanyID:  resp.CompanyID,
		EmployeeID: resp.EmployeeID,
		Email:      resp.Email,
		Name:       resp.Name,
		Role:       resp.Role,
		Status:     resp.AccountStatus,
	}, nil
}

func (s *service) issuePair(ctx context.Context, a *account.Account) (TokenPairResponse, error) {
	employeeID := ""
	if emp, err := s.repo.FindEmployeeByAccount(ctx, a.ID.String()); err == nil {
		employeeID = emp.ID.String()
	}

	now := time.Now().UTC()

	access, err := s.signToken(a, employeeID, "access", now, now.Add(s.tokens.AccessTTL))
	if err != nil {
		return TokenPairResponse{}, err
	}
	refresh, err := s.signToken(a, employeeID, "refresh", now, now.Add(s.tokens.RefreshTTL))
	if err != nil {
		return TokenPairResponse{}, err
	}

	return TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL.Seconds()),
	}, nil
}

func (s *service) signToken(a *account.Account, employeeID, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"account_id": a.ID.String(),
		"company_id": a.CompanyID.String(),
		"role":       a.Role,
		"token_type": tokenType,
		"iat":        issuedAt.Unix(),
		"exp":        expiresAt.Unix(),
	}
	if employeeID != "" {
		claims["employee_id"] = employeeID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.tokens.Secret))
}

func (s *service) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(s.tokens.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}
