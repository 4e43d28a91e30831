package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the verified payload of an access token.
type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the token grants permission.
func (c *Claims) HasPermission(permission string) bool {
	for _, granted := range c.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// VerifierConfig holds the expected token properties.
type VerifierConfig struct {
	Issuer     string
	Audience   string
	Algorithms []string
	Now        func() time.Time
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier struct {
	keys       KeySource
	issuer     string
	audience   string
	algorithms []string
	now        func() time.Time
}

// NewVerifier builds a verifier over a key source.
func NewVerifier(keys KeySource, cfg VerifierConfig) *Verifier {
	algorithms := cfg.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{"RS256"}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		keys:       keys,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		algorithms: algorithms,
		now:        now,
	}
}

// Verify checks the Authorization header and that the token grants permission.
func (v *Verifier) Verify(ctx context.Context, header, permission string) (*Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	claims, err := v.ParseToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := CheckPermission(claims, permission); err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", newError(KindMissingHeader, CodeHeaderMissing, "no authorization header", nil)
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", newError(KindMalformedHeader, CodeInvalidHeader, `authorization header must start with "Bearer"`, nil)
	}
	if len(parts) == 1 {
		return "", newError(KindMalformedHeader, CodeInvalidHeader, "token not found", nil)
	}
	if len(parts) > 2 {
		return "", newError(KindMalformedHeader, CodeInvalidHeader, "authorization header must be bearer token", nil)
	}
	return parts[1], nil
}

// ParseToken resolves the signing key by kid and validates signature,
// expiry, audience and issuer.
func (v *Verifier) ParseToken(ctx context.Context, token string) (*Claims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, &Claims{})
	if err != nil {
		return nil, newError(KindMalformedToken, CodeInvalidHeader, "unable to decode authentication token", err)
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, newError(KindMalformedHeader, CodeInvalidHeader, "missing key id", nil)
	}

	keys, err := v.keys.KeySet(ctx)
	if err != nil {
		return nil, newError(KindKeySetUnavailable, CodeInvalidHeader, "unable to fetch signing keys", err)
	}
	key, ok := keys[kid]
	if !ok {
		return nil, newError(KindUnresolvableKey, CodeInvalidHeader, "unable to find appropriate key", nil)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods(v.algorithms),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	return claims, nil
}

// CheckPermission enforces the permissions claim.
func CheckPermission(claims *Claims, permission string) error {
	if claims.Permissions == nil {
		return newError(KindMissingPermissions, CodeInvalidClaims, "permissions not included in JWT", nil)
	}
	if !claims.HasPermission(permission) {
		return newError(KindInsufficientPermission, CodeUnauthorized, "permission not found", nil)
	}
	return nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return newError(KindExpired, CodeTokenExpired, "token expired", err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return newError(KindClaimMismatch, CodeInvalidClaims, "incorrect claims, please check the audience and issuer", err)
	default:
		return newError(KindInvalidToken, CodeInvalidHeader, "unable to parse authentication token", err)
	}
}
