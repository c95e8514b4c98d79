package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// TokenBytes is the number of random bytes in an issued token.
// Tokens are hex-encoded, so their length is twice this.
const TokenBytes = 32

const tokenCacheKeyPrefix = "token:"

// TokenService issues, revokes and authenticates bearer tokens.
type TokenService struct {
	tokens   ports.TokenRepository
	cache    ports.Cache
	cacheTTL time.Duration
	random   io.Reader
	metrics  *telemetry.DomainMetrics
	logger   *slog.Logger
	now      func() time.Time

	// cacheMu orders cache writes against revocations. revocations counts
	// completed revokes; a lookup that raced one is not remembered.
	cacheMu     sync.Mutex
	revocations uint64
}

// TokenServiceConfig contains configuration for the token service.
type TokenServiceConfig struct {
	Tokens  ports.TokenRepository
	Logger  *slog.Logger
	Metrics *telemetry.DomainMetrics

	// Cache holds recently admitted tokens. Nil disables caching.
	// Revocations only evict this process's cache, so a cache is only
	// safe in a single-instance deployment.
	Cache    ports.Cache
	CacheTTL time.Duration

	// Random is the entropy source for new tokens. Defaults to crypto/rand.
	Random io.Reader

	// Now stamps created_at and deleted_at. Defaults to UTC wall time.
	Now func() time.Time
}

// NewTokenService creates a new token service with the provided dependencies.
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	if cfg.Tokens == nil {
		panic("token repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	random := cfg.Random
	if random == nil {
		random = rand.Reader
	}

	return &TokenService{
		tokens:   cfg.Tokens,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		random:   random,
		metrics:  cfg.Metrics,
		logger:   logger.With(slog.String("component", "app.TokenService")),
		now:      defaultNow(cfg.Now),
	}
}

// Issue creates and stores a new token. No uniqueness check is made.
func (s *TokenService) Issue(ctx context.Context) (string, error) {
	logger := requestLogger(ctx, s.logger, "app.TokenService")

	buf := make([]byte, TokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		logger.ErrorContext(ctx, "failed to generate token", slog.Any("error", err))

		return "", domain.NewInternalError(MsgTokenInsertFailed, fmt.Errorf("reading random bytes: %w", err))
	}

	value := hex.EncodeToString(buf)

	token, err := s.tokens.Create(ctx, value, s.now())
	if err != nil {
		logger.ErrorContext(ctx, "failed to store token", slog.Any("error", err))

		return "", domain.NewInternalError(MsgTokenInsertFailed, err)
	}

	s.metrics.TokenIssued()
	logger.InfoContext(ctx, "token issued", slog.Int64("token_id", token.ID))

	return value, nil
}

// Revoke soft-deletes a token. Revoking an already revoked token succeeds.
func (s *TokenService) Revoke(ctx context.Context, value string) error {
	logger := requestLogger(ctx, s.logger, "app.TokenService")

	if value == "" {
		return domain.NewNotFoundError(domain.EntityToken, "")
	}

	err := s.tokens.Revoke(ctx, value, s.now())
	if err != nil {
		if domain.IsNotFound(err) {
			logger.DebugContext(ctx, "revoke of unknown token")
			return err
		}

		logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))

		return domain.NewInternalError(MsgTokenRevokeFailed, err)
	}

	s.evict(ctx, value)

	s.metrics.TokenRevoked()
	logger.InfoContext(ctx, "token revoked")

	return nil
}

// Authenticate admits an active token.
// It returns an UnauthorizedError for an empty value, a NotFoundError for an
// unknown or revoked token, and an InternalError when the lookup fails.
func (s *TokenService) Authenticate(ctx context.Context, value string) error {
	logger := requestLogger(ctx, s.logger, "app.TokenService")

	if value == "" {
		s.metrics.AuthDecision(telemetry.AuthMissing)
		return domain.NewUnauthorizedError("bearer token is missing")
	}

	if s.cached(ctx, value) {
		s.metrics.AuthDecision(telemetry.AuthCached)
		return nil
	}

	epoch := s.revocationEpoch()

	_, err := s.tokens.FindActive(ctx, value)
	if err != nil {
		if domain.IsNotFound(err) {
			s.metrics.AuthDecision(telemetry.AuthUnknown)
			logger.DebugContext(ctx, "unknown or revoked token")

			return err
		}

		s.metrics.AuthDecision(telemetry.AuthError)
		logger.ErrorContext(ctx, "token lookup failed", slog.Any("error", err))

		return domain.NewInternalError(MsgTokenCheckFailed, err)
	}

	s.metrics.AuthDecision(telemetry.AuthAdmitted)
	s.remember(ctx, value, epoch)

	return nil
}

func (s *TokenService) cached(ctx context.Context, value string) bool {
	if s.cache == nil {
		return false
	}

	_, err := s.cache.Get(ctx, cacheKey(value))

	return err == nil
}

func (s *TokenService) revocationEpoch() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	return s.revocations
}

// remember caches an admitted token unless a revoke completed after the
// lookup started.
func (s *TokenService) remember(ctx context.Context, value string, epoch uint64) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.revocations != epoch {
		return
	}

	ttl := max(int(s.cacheTTL.Seconds()), 1)
	if err := s.cache.Set(ctx, cacheKey(value), []byte{1}, ttl); err != nil {
		requestLogger(ctx, s.logger, "app.TokenService").WarnContext(ctx, "failed to cache token",
			slog.Any("error", err),
		)
	}
}

// evict records a revocation and drops the token from the cache.
func (s *TokenService) evict(ctx context.Context, value string) {
	if s.cache == nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.revocations++

	if err := s.cache.Delete(ctx, cacheKey(value)); err != nil {
		requestLogger(ctx, s.logger, "app.TokenService").WarnContext(ctx, "failed to evict revoked token",
			slog.Any("error", err),
		)
	}
}

func cacheKey(value string) string {
	return tokenCacheKeyPrefix + value
}
