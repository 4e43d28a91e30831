package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.uber.org/zap"
)

// KeySet maps key ids to public signing keys.
type KeySet map[string]crypto.PublicKey

// KeySource yields the identity provider's current signing keys.
type KeySource interface {
	KeySet(ctx context.Context) (KeySet, error)
}

// StaticKeySource serves a fixed, pre-supplied key set.
type StaticKeySource struct {
	Keys KeySet
}

// KeySet returns the fixed keys.
func (s StaticKeySource) KeySet(context.Context) (KeySet, error) {
	return s.Keys, nil
}

type jwksEnvelope struct {
	Keys []json.RawMessage `json:"keys"`
}

// SkipFunc observes a key that ParseJWKS left out of the set.
type SkipFunc func(kid string, err error)

// ParseJWKS decodes a JSON Web Key Set document. Keys that are not usable for
// signature verification are skipped and reported to onSkip, which may be nil.
// Only a document that is not a key set at all is an error.
func ParseJWKS(data []byte, onSkip SkipFunc) (KeySet, error) {
	var doc jwksEnvelope
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	if doc.Keys == nil {
		return nil, errors.New("decode jwks: missing keys")
	}
	if onSkip == nil {
		onSkip = func(string, error) {}
	}

	set := make(KeySet, len(doc.Keys))
	for i, raw := range doc.Keys {
		key, err := jwk.ParseKey(raw)
		if err != nil {
			onSkip(rawKeyID(raw, i), err)
			continue
		}
		kid := key.KeyID()
		if kid == "" {
			onSkip(rawKeyID(raw, i), errors.New("missing kid"))
			continue
		}
		if use := key.KeyUsage(); use != "" && use != string(jwk.ForSignature) {
			continue
		}
		switch key.KeyType() {
		case jwa.RSA, jwa.EC:
		default:
			continue
		}
		var pub any
		if err := key.Raw(&pub); err != nil {
			onSkip(kid, err)
			continue
		}
		switch pub.(type) {
		case *rsa.PublicKey, *ecdsa.PublicKey:
			set[kid] = pub
		default:
			onSkip(kid, fmt.Errorf("unexpected key type %T", pub))
		}
	}
	return set, nil
}

// rawKeyID labels a key that could not be parsed, falling back to its position.
func rawKeyID(raw json.RawMessage, index int) string {
	var header struct {
		Kid string `json:"kid"`
	}
	if json.Unmarshal(raw, &header) == nil && header.Kid != "" {
		return header.Kid
	}
	return fmt.Sprintf("#%d", index)
}

// Fetcher downloads the raw JWKS document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPFetcher retrieves the JWKS document over HTTP with the Fiber client.
type HTTPFetcher struct {
	URL     string
	Timeout time.Duration
}

// Fetch performs one GET against the JWKS URL. The request never outlives
// the deadline of ctx.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := f.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("fetch jwks: %w", context.DeadlineExceeded)
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Get(f.URL)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
		}
		return nil, fmt.Errorf("fetch jwks: %w", errors.Join(errs...))
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: unexpected status %d", code)
	}
	return body, nil
}

// RemoteKeySource resolves keys from the provider, optionally through a cache.
type RemoteKeySource struct {
	fetcher Fetcher
	cache   KeyCache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewRemoteKeySource builds a source. A nil cache fetches on every call.
func NewRemoteKeySource(fetcher Fetcher, cache KeyCache, ttl time.Duration, logger *zap.Logger) *RemoteKeySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteKeySource{fetcher: fetcher, cache: cache, ttl: ttl, logger: logger}
}

// KeySet returns cached keys when fresh and downloads them otherwise.
func (s *RemoteKeySource) KeySet(ctx context.Context) (KeySet, error) {
	if s.cache != nil && s.ttl > 0 {
		doc, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.logger.Warn("jwks cache read failed", zap.Error(err))
		case doc != nil:
			set, err := ParseJWKS(doc, nil)
			if err == nil {
				return set, nil
			}
			s.logger.Warn("discarding unreadable cached jwks", zap.Error(err))
		}
	}

	doc, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	set, err := ParseJWKS(doc, s.logSkipped)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, doc, s.ttl); err != nil {
			s.logger.Warn("jwks cache write failed", zap.Error(err))
		}
	}
	return set, nil
}

func (s *RemoteKeySource) logSkipped(kid string, err error) {
	s.logger.Warn("skipping unusable signing key", zap.String("kid", kid), zap.Error(err))
}
