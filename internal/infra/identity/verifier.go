package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/cache"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ============================================================
// ID token verification — implements port.TokenVerifier
// ============================================================

// Verifier validates provider-issued RS256 ID tokens against the
// provider's published signing certificates. Certificates rotate, so
// they are cached with a TTL and re-fetched once it lapses.
type Verifier struct {
	httpClient *http.Client
	certsURL   string
	projectID  string
	certs      *cache.InMemory[map[string]*rsa.PublicKey]
	logger     *zap.Logger
}

const certsCacheKey = "signing-certs"

// NewVerifier creates a verifier for one project's tokens. certsURL is
// the provider's X.509 certificate endpoint.
func NewVerifier(httpClient *http.Client, certsURL, projectID string, certTTL time.Duration, logger *zap.Logger) *Verifier {
	return &Verifier{
		httpClient: httpClient,
		certsURL:   certsURL,
		projectID:  projectID,
		certs:      cache.New[map[string]*rsa.PublicKey](certTTL),
		logger:     logger,
	}
}

// Verify checks signature, issuer, audience, and expiry, and returns the
// token's subject (the user ID).
func (v *Verifier) Verify(ctx context.Context, idToken string) (string, error) {
	keys, err := v.signingKeys(ctx)
	if err != nil {
		return "", &domain.ErrExternalService{Service: "identity/certs", Err: err}
	}

	token, err := jwt.Parse(idToken,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			key, ok := keys[kid]
			if !ok {
				return nil, fmt.Errorf("unknown signing key %q", kid)
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(fmt.Sprintf("https://securetoken.google.com/%s", v.projectID)),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "invalid token"}
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid token"}
	}
	return sub, nil
}

// signingKeys returns the current key set, fetching it when the cache
// is cold or expired.
func (v *Verifier) signingKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	if keys, ok := v.certs.Get(certsCacheKey); ok {
		return keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cert endpoint returned status %d", resp.StatusCode)
	}

	// The endpoint serves {"kid": "-----BEGIN CERTIFICATE-----..."}.
	var pemByKid map[string]string
	if err := json.Unmarshal(body, &pemByKid); err != nil {
		return nil, fmt.Errorf("failed to decode cert response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pemByKid))
	for kid, certPEM := range pemByKid {
		key, err := parseCertKey(certPEM)
		if err != nil {
			v.logger.Warn("identity: skipping unparseable signing cert",
				zap.String("kid", kid),
				zap.Error(err),
			)
			continue
		}
		keys[kid] = key
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("cert endpoint returned no usable keys")
	}

	v.certs.Set(certsCacheKey, keys)
	v.logger.Debug("identity: refreshed signing certs", zap.Int("keys", len(keys)))
	return keys, nil
}

func parseCertKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("no PEM block")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate key is %T, not RSA", cert.PublicKey)
	}
	return key, nil
}
