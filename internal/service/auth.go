package service

import (
	"context"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var authTracer = otel.Tracer("service/auth")

// AuthService is a thin boundary over the external identity provider.
// Credentials never persist here; sensitive operations re-authenticate
// with the current password before touching the account.
type AuthService struct {
	provider     port.AuthProvider
	transactions port.TransactionStore
	settings     port.SettingsStore
	logger       *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(provider port.AuthProvider, transactions port.TransactionStore, settings port.SettingsStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		provider:     provider,
		transactions: transactions,
		settings:     settings,
		logger:       logger,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthSession, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}

	session, err := s.provider.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("user_id", session.UserID))
	return session, nil
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthSession, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email and password required"}
	}

	session, err := s.provider.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login", zap.String("user_id", session.UserID))
	return session, nil
}

// Refresh exchanges a refresh token for a fresh session.
func (s *AuthService) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.AuthSession, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	if req.RefreshToken == "" {
		return nil, &domain.ErrValidation{Field: "refreshToken", Message: "required"}
	}
	return s.provider.Refresh(ctx, req)
}

// SendPasswordReset asks the provider to mail a reset link. Always
// succeeds for well-formed addresses so callers cannot probe which
// emails exist.
func (s *AuthService) SendPasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.SendPasswordReset")
	defer span.End()

	if req.Email == "" {
		return &domain.ErrValidation{Field: "email", Message: "required"}
	}
	return s.provider.SendPasswordReset(ctx, req.Email)
}

// reauthenticate resolves the token's account and signs in again with the
// supplied password. Returns the fresh session.
func (s *AuthService) reauthenticate(ctx context.Context, idToken, password string) (*domain.AuthSession, error) {
	account, err := s.provider.Lookup(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.provider.Login(ctx, &domain.LoginRequest{
		Email:    account.Email,
		Password: password,
	})
}

// ChangePassword re-authenticates with the current password, then sets
// the new one. A wrong current password changes nothing.
func (s *AuthService) ChangePassword(ctx context.Context, idToken string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	if req.NewPassword == "" {
		return &domain.ErrValidation{Field: "newPassword", Message: "required"}
	}

	session, err := s.reauthenticate(ctx, idToken, req.CurrentPassword)
	if err != nil {
		return err
	}

	if err := s.provider.ChangePassword(ctx, session.IDToken, req.NewPassword); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("user_id", session.UserID))
	return nil
}

// ChangeEmail re-authenticates, then asks the provider to verify the new
// address. The switch completes only after out-of-band confirmation.
func (s *AuthService) ChangeEmail(ctx context.Context, idToken string, req *domain.ChangeEmailRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangeEmail")
	defer span.End()

	if req.NewEmail == "" {
		return &domain.ErrValidation{Field: "newEmail", Message: "required"}
	}

	session, err := s.reauthenticate(ctx, idToken, req.Password)
	if err != nil {
		return err
	}

	if err := s.provider.ChangeEmail(ctx, session.IDToken, req.NewEmail); err != nil {
		return err
	}

	s.logger.Info("email change requested", zap.String("user_id", session.UserID))
	return nil
}

// DeleteAccount re-authenticates, deletes the user's documents across all
// collections, then removes the account itself. Document deletion runs
// first so a half-failed run leaves a still-deletable account rather than
// orphaned data.
func (s *AuthService) DeleteAccount(ctx context.Context, idToken string, req *domain.DeleteAccountRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.DeleteAccount")
	defer span.End()

	session, err := s.reauthenticate(ctx, idToken, req.Password)
	if err != nil {
		return err
	}
	userID := session.UserID
	span.SetAttributes(attribute.String("user.id", userID))

	if err := s.purgeUserData(ctx, userID); err != nil {
		return err
	}

	if err := s.provider.DeleteAccount(ctx, session.IDToken); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// purgeUserData removes every document the user owns, collections in
// parallel, documents within a collection sequentially.
func (s *AuthService) purgeUserData(ctx context.Context, userID string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txns, err := s.transactions.ListTransactions(gctx, userID)
		if err != nil {
			return err
		}
		for _, tx := range txns {
			if err := s.transactions.DeleteTransaction(gctx, userID, tx.ID); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		cats, err := s.settings.ListCategories(gctx, userID)
		if err != nil {
			return err
		}
		for _, c := range cats {
			if err := s.settings.DeleteCategory(gctx, userID, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		budgets, err := s.settings.ListBudgets(gctx, userID)
		if err != nil {
			return err
		}
		for _, b := range budgets {
			if err := s.settings.DeleteBudget(gctx, userID, b.ID); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

// validateCredentials applies the minimal local checks before a register
// call; everything stricter is the provider's call.
func validateCredentials(email, password string) error {
	if email == "" {
		return &domain.ErrValidation{Field: "email", Message: "required"}
	}
	if len(password) < 6 {
		return &domain.ErrValidation{Field: "password", Message: "minimum 6 characters"}
	}
	return nil
}
