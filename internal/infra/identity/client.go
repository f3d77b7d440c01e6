// Package identity provides a client for the identity provider's REST API
// (Identity Toolkit style). All credential handling lives on the provider;
// this service forwards passwords and never stores them.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("identity")

// Client wraps HTTP calls to the identity provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokenURL   string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates an identity client. baseURL is normally
// "https://identitytoolkit.googleapis.com/v1" and tokenURL
// "https://securetoken.googleapis.com/v1"; tests point both at a local
// server.
func NewClient(httpClient *http.Client, baseURL, tokenURL, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokenURL:   tokenURL,
		apiKey:     apiKey,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// providerError is the provider's error envelope.
type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// doPost executes one provider call and returns the raw success body.
// Provider error codes are translated to typed domain errors here so
// callers never see raw provider strings.
func (c *Client) doPost(ctx context.Context, u string, payload, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Only transport failures count toward the breaker. Provider 4xx
	// responses are the user's problem, not the provider's health.
	res, err := c.cb.Execute(func() (any, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ErrCircuitOpen{Service: "identity"}
		}
		c.logger.Error("identity: request failed", zap.Error(err))
		return err
	}
	resp := res.(*http.Response)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerError
		_ = json.Unmarshal(body, &pe)
		c.logger.Warn("identity: non-2xx response",
			zap.Int("status", resp.StatusCode),
			zap.String("code", pe.Error.Message),
		)
		return translateProviderError(pe.Error.Message, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode identity response: %w", err)
		}
	}
	return nil
}

// translateProviderError maps provider error codes to domain errors.
func translateProviderError(code string, status int) error {
	// Codes may carry a suffix, e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
	code, _, _ = strings.Cut(code, " ")

	switch code {
	case "EMAIL_EXISTS":
		return &domain.ErrConflict{Message: "email already registered"}
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS",
		"USER_DISABLED", "INVALID_ID_TOKEN", "TOKEN_EXPIRED",
		"INVALID_REFRESH_TOKEN", "USER_NOT_FOUND", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return &domain.ErrUnauthorized{Message: "invalid credentials"}
	case "WEAK_PASSWORD":
		return &domain.ErrValidation{Field: "password", Message: "too weak"}
	case "INVALID_EMAIL", "MISSING_EMAIL", "MISSING_PASSWORD":
		return &domain.ErrValidation{Field: "email", Message: "invalid"}
	default:
		return &domain.ErrExternalService{
			Service: "identity",
			Err:     fmt.Errorf("provider returned %d (%s)", status, code),
		}
	}
}

func (c *Client) endpoint(op string) string {
	return fmt.Sprintf("%s/accounts:%s?key=%s", c.baseURL, op, c.apiKey)
}

// sessionResponse is the provider's account payload for sign-up/sign-in.
type sessionResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r *sessionResponse) toSession() *domain.AuthSession {
	expires, _ := strconv.Atoi(r.ExpiresIn)
	return &domain.AuthSession{
		UserID:       r.LocalID,
		Email:        r.Email,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    expires,
	}
}

// Register creates a new account and returns its first session.
func (c *Client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthSession, error) {
	ctx, span := tracer.Start(ctx, "Identity.Register")
	defer span.End()

	payload := map[string]any{
		"email":             req.Email,
		"password":          req.Password,
		"returnSecureToken": true,
	}

	var resp sessionResponse
	if err := c.doPost(ctx, c.endpoint("signUp"), payload, &resp); err != nil {
		return nil, err
	}
	return resp.toSession(), nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthSession, error) {
	ctx, span := tracer.Start(ctx, "Identity.Login")
	defer span.End()

	payload := map[string]any{
		"email":             req.Email,
		"password":          req.Password,
		"returnSecureToken": true,
	}

	var resp sessionResponse
	if err := c.doPost(ctx, c.endpoint("signInWithPassword"), payload, &resp); err != nil {
		return nil, err
	}
	return resp.toSession(), nil
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, req *domain.RefreshRequest) (*domain.AuthSession, error) {
	ctx, span := tracer.Start(ctx, "Identity.Refresh")
	defer span.End()

	payload := map[string]any{
		"grant_type":    "refresh_token",
		"refresh_token": req.RefreshToken,
	}

	var resp struct {
		UserID       string `json:"user_id"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	u := fmt.Sprintf("%s/token?key=%s", c.tokenURL, c.apiKey)
	if err := c.doPost(ctx, u, payload, &resp); err != nil {
		return nil, err
	}

	expires, _ := strconv.Atoi(resp.ExpiresIn)
	return &domain.AuthSession{
		UserID:       resp.UserID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    expires,
	}, nil
}

// Lookup resolves an ID token to its account.
func (c *Client) Lookup(ctx context.Context, idToken string) (*domain.AccountInfo, error) {
	ctx, span := tracer.Start(ctx, "Identity.Lookup")
	defer span.End()

	var resp struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"emailVerified"`
		} `json:"users"`
	}
	// Lookup is the one idempotent read here, so it gets the retry.
	err := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
		callErr := c.doPost(ctx, c.endpoint("lookup"), map[string]any{"idToken": idToken}, &resp)
		var unauthorized *domain.ErrUnauthorized
		if errors.As(callErr, &unauthorized) {
			return nil // definitive answer, do not retry
		}
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	u := resp.Users[0]
	return &domain.AccountInfo{
		UserID:        u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
	}, nil
}

// SendPasswordReset asks the provider to mail a reset link. The provider
// does not reveal whether the address exists; neither does this method.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	ctx, span := tracer.Start(ctx, "Identity.SendPasswordReset")
	defer span.End()

	payload := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	err := c.doPost(ctx, c.endpoint("sendOobCode"), payload, nil)

	var notFound *domain.ErrUnauthorized
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// ChangePassword sets a new password for the token's account.
func (c *Client) ChangePassword(ctx context.Context, idToken, newPassword string) error {
	ctx, span := tracer.Start(ctx, "Identity.ChangePassword")
	defer span.End()

	payload := map[string]any{
		"idToken":           idToken,
		"password":          newPassword,
		"returnSecureToken": false,
	}
	return c.doPost(ctx, c.endpoint("update"), payload, nil)
}

// ChangeEmail asks the provider to verify the new address before the
// switch takes effect.
func (c *Client) ChangeEmail(ctx context.Context, idToken, newEmail string) error {
	ctx, span := tracer.Start(ctx, "Identity.ChangeEmail")
	defer span.End()

	payload := map[string]any{
		"requestType": "VERIFY_AND_CHANGE_EMAIL",
		"idToken":     idToken,
		"newEmail":    newEmail,
	}
	return c.doPost(ctx, c.endpoint("sendOobCode"), payload, nil)
}

// DeleteAccount removes the token's account from the provider.
func (c *Client) DeleteAccount(ctx context.Context, idToken string) error {
	ctx, span := tracer.Start(ctx, "Identity.DeleteAccount")
	defer span.End()

	return c.doPost(ctx, c.endpoint("delete"), map[string]any{"idToken": idToken}, nil)
}
