package app

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotes-service/internal/adapters/cache"
	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/mocks"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
)

const sampleToken = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNewTokenService_PanicsWithoutRepository(t *testing.T) {
	assert.Panics(t, func() {
		NewTokenService(TokenServiceConfig{})
	})
}

func TestTokenService_Issue(t *testing.T) {
	t.Run("hex encodes 32 random bytes", func(t *testing.T) {
		seed := bytes.Repeat([]byte{0xab}, TokenBytes)
		want := hex.EncodeToString(seed)

		repo := mocks.NewMockTokenRepository(t)
		repo.EXPECT().Create(mock.Anything, want, fixedNow).
			Return(&domain.Token{ID: 1, Value: want, CreatedAt: fixedNow}, nil)

		svc := NewTokenService(TokenServiceConfig{
			Tokens: repo,
			Logger: discardLogger(),
			Random: bytes.NewReader(seed),
			Now:    clock,
		})

		token, err := svc.Issue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, token)
		assert.Len(t, token, 2*TokenBytes)
	})

	t.Run("crypto source yields distinct tokens", func(t *testing.T) {
		repo := mocks.NewMockTokenRepository(t)
		repo.EXPECT().Create(mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.Token{ID: 1}, nil).Twice()

		svc := NewTokenService(TokenServiceConfig{Tokens: repo, Logger: discardLogger()})

		a, err := svc.Issue(context.Background())
		require.NoError(t, err)
		b, err := svc.Issue(context.Background())
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
		assert.Regexp(t, "^[0-9a-f]{64}$", a)
	})

	t.Run("entropy failure", func(t *testing.T) {
		svc := NewTokenService(TokenServiceConfig{
			Tokens: mocks.NewMockTokenRepository(t),
			Logger: discardLogger(),
			Random: failingReader{},
		})

		_, err := svc.Issue(context.Background())
		assertInternal(t, err, MsgTokenInsertFailed)
	})

	t.Run("insert failure", func(t *testing.T) {
		repo := mocks.NewMockTokenRepository(t)
		repo.EXPECT().Create(mock.Anything, mock.Anything, mock.Anything).Return(nil, errStore)

		svc := NewTokenService(TokenServiceConfig{Tokens: repo, Logger: discardLogger()})

		_, err := svc.Issue(context.Background())
		assertInternal(t, err, MsgTokenInsertFailed)
	})
}

func TestTokenService_Revoke(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		setupMock func(*mocks.MockTokenRepository, *mocks.MockCache)
		errCheck  func(error) bool
	}{
		{
			name:  "revoked and evicted",
			token: sampleToken,
			setupMock: func(r *mocks.MockTokenRepository, c *mocks.MockCache) {
				r.EXPECT().Revoke(mock.Anything, sampleToken, fixedNow).Return(nil)
				c.EXPECT().Delete(mock.Anything, "token:"+sampleToken).Return(nil)
			},
		},
		{
			name:  "eviction failure is not fatal",
			token: sampleToken,
			setupMock: func(r *mocks.MockTokenRepository, c *mocks.MockCache) {
				r.EXPECT().Revoke(mock.Anything, sampleToken, fixedNow).Return(nil)
				c.EXPECT().Delete(mock.Anything, mock.Anything).Return(errors.New("cache down"))
			},
		},
		{
			name:  "unknown token",
			token: "nope",
			setupMock: func(r *mocks.MockTokenRepository, _ *mocks.MockCache) {
				r.EXPECT().Revoke(mock.Anything, "nope", fixedNow).Return(domain.NewNotFoundError(domain.EntityToken, ""))
			},
			errCheck: domain.IsNotFound,
		},
		{
			name:      "empty token",
			token:     "",
			setupMock: func(*mocks.MockTokenRepository, *mocks.MockCache) {},
			errCheck:  domain.IsNotFound,
		},
		{
			name:  "store failure",
			token: sampleToken,
			setupMock: func(r *mocks.MockTokenRepository, _ *mocks.MockCache) {
				r.EXPECT().Revoke(mock.Anything, sampleToken, fixedNow).Return(errStore)
			},
			errCheck: domain.IsInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockTokenRepository(t)
			cache := mocks.NewMockCache(t)
			tt.setupMock(repo, cache)

			svc := NewTokenService(TokenServiceConfig{
				Tokens:   repo,
				Cache:    cache,
				CacheTTL: time.Minute,
				Logger:   discardLogger(),
				Now:      clock,
			})

			err := svc.Revoke(context.Background(), tt.token)
			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestTokenService_Authenticate(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		withCache   bool
		setupMock   func(*mocks.MockTokenRepository, *mocks.MockCache)
		errCheck    func(error) bool
		wantOutcome string
	}{
		{
			name:        "missing",
			token:       "",
			setupMock:   func(*mocks.MockTokenRepository, *mocks.MockCache) {},
			errCheck:    domain.IsUnauthorized,
			wantOutcome: telemetry.AuthMissing,
		},
		{
			name:  "active",
			token: sampleToken,
			setupMock: func(r *mocks.MockTokenRepository, _ *mocks.MockCache) {
				r.EXPECT().FindActive(mock.Anything, sampleToken).Return(&domain.Token{ID: 1, Value: sampleToken}, nil)
			},
			wantOutcome: telemetry.AuthAdmitted,
		},
		{
			name:  "unknown or revoked",
			token: sampleToken,
			setupMock: func(r *mocks.MockTokenRepository, _ *mocks.MockCache) {
				r.EXPECT().FindActive(mock.Anything, sampleToken).Return(nil, domain.NewNotFoundError(domain.EntityToken, ""))
			},
			errCheck:    domain.IsNotFound,
			wantOutcome: telemetry.AuthUnknown,
		},
		{
			name:  "lookup failure",
			token: sampleToken,
			setupMock: func(r *mocks.MockTokenRepository, _ *mocks.MockCache) {
				r.EXPECT().FindActive(mock.Anything, sampleToken).Return(nil, errStore)
			},
			errCheck:    domain.IsInternal,
			wantOutcome: telemetry.AuthError,
		},
		{
			name:      "cache hit skips the store",
			token:     sampleToken,
			withCache: true,
			setupMock: func(_ *mocks.MockTokenRepository, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "token:"+sampleToken).Return([]byte{1}, nil)
			},
			wantOutcome: telemetry.AuthCached,
		},
		{
			name:      "cache miss consults the store and remembers",
			token:     sampleToken,
			withCache: true,
			setupMock: func(r *mocks.MockTokenRepository, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, "token:"+sampleToken).Return(nil, domain.ErrNotFound)
				r.EXPECT().FindActive(mock.Anything, sampleToken).Return(&domain.Token{ID: 1}, nil)
				c.EXPECT().Set(mock.Anything, "token:"+sampleToken, []byte{1}, 60).Return(nil)
			},
			wantOutcome: telemetry.AuthAdmitted,
		},
		{
			name:      "unknown tokens are not cached",
			token:     sampleToken,
			withCache: true,
			setupMock: func(r *mocks.MockTokenRepository, c *mocks.MockCache) {
				c.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
				r.EXPECT().FindActive(mock.Anything, sampleToken).Return(nil, domain.ErrNotFound)
			},
			errCheck:    domain.IsNotFound,
			wantOutcome: telemetry.AuthUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockTokenRepository(t)
			cache := mocks.NewMockCache(t)
			tt.setupMock(repo, cache)

			reg := prometheus.NewRegistry()
			metrics, err := telemetry.NewDomainMetrics(reg)
			require.NoError(t, err)

			cfg := TokenServiceConfig{
				Tokens:  repo,
				Logger:  discardLogger(),
				Metrics: metrics,
			}
			if tt.withCache {
				cfg.Cache = cache
				cfg.CacheTTL = time.Minute
			}

			err = NewTokenService(cfg).Authenticate(context.Background(), tt.token)
			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))
			} else {
				require.NoError(t, err)
			}

			expected := `
# HELP quotes_auth_decisions_total Bearer token gate decisions by outcome.
# TYPE quotes_auth_decisions_total counter
quotes_auth_decisions_total{outcome="` + tt.wantOutcome + `"} 1
`
			require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "quotes_auth_decisions_total"))
		})
	}
}

func TestTokenService_RevokeDuringLookupIsNotCached(t *testing.T) {
	ctx := context.Background()

	tokenCache, err := cache.New(cache.Config{Logger: discardLogger()})
	require.NoError(t, err)

	lookedUp := make(chan struct{})
	resume := make(chan struct{})

	repo := mocks.NewMockTokenRepository(t)
	repo.EXPECT().FindActive(mock.Anything, sampleToken).
		RunAndReturn(func(context.Context, string) (*domain.Token, error) {
			close(lookedUp)
			<-resume

			return &domain.Token{ID: 1, Value: sampleToken}, nil
		}).Once()
	repo.EXPECT().Revoke(mock.Anything, sampleToken, mock.Anything).Return(nil).Once()
	repo.EXPECT().FindActive(mock.Anything, sampleToken).
		Return(nil, domain.NewNotFoundError(domain.EntityToken, "")).Once()

	svc := NewTokenService(TokenServiceConfig{
		Tokens:   repo,
		Logger:   discardLogger(),
		Cache:    tokenCache,
		CacheTTL: time.Minute,
	})

	inFlight := make(chan error, 1)
	go func() { inFlight <- svc.Authenticate(ctx, sampleToken) }()

	<-lookedUp
	require.NoError(t, svc.Revoke(ctx, sampleToken))
	close(resume)

	// The request that read the row before the revoke is still admitted.
	require.NoError(t, <-inFlight)
	assert.Zero(t, tokenCache.Len())

	err = svc.Authenticate(ctx, sampleToken)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestTokenService_CachesAfterEarlierRevocations(t *testing.T) {
	ctx := context.Background()

	tokenCache, err := cache.New(cache.Config{Logger: discardLogger()})
	require.NoError(t, err)

	repo := mocks.NewMockTokenRepository(t)
	repo.EXPECT().Revoke(mock.Anything, "other", mock.Anything).Return(nil).Once()
	repo.EXPECT().FindActive(mock.Anything, sampleToken).
		Return(&domain.Token{ID: 1, Value: sampleToken}, nil).Once()

	svc := NewTokenService(TokenServiceConfig{
		Tokens:   repo,
		Logger:   discardLogger(),
		Cache:    tokenCache,
		CacheTTL: time.Minute,
	})

	require.NoError(t, svc.Revoke(ctx, "other"))
	require.NoError(t, svc.Authenticate(ctx, sampleToken))
	require.NoError(t, svc.Authenticate(ctx, sampleToken))

	assert.Equal(t, 1, tokenCache.Len())
}
