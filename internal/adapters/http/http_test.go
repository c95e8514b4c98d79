package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotes-service/internal/app"
	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/mocks"
	"github.com/jsamuelsen/quotes-service/internal/platform/config"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

const activeToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

// routerFixture wires the full router over mock repositories. The token
// repository admits activeToken and nothing else.
type routerFixture struct {
	engine *gin.Engine
	quotes *mocks.MockQuoteRepository
	tokens *mocks.MockTokenRepository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	quotes := mocks.NewMockQuoteRepository(t)
	tokens := mocks.NewMockTokenRepository(t)

	tokens.EXPECT().FindActive(mock.Anything, activeToken).
		Return(&domain.Token{ID: 1, Value: activeToken}, nil).Maybe()
	tokens.EXPECT().FindActive(mock.Anything, mock.Anything).
		Return(nil, domain.NewNotFoundError(domain.EntityToken, "")).Maybe()

	logger := discardLogger()

	quoteService := app.NewQuoteService(app.QuoteServiceConfig{Quotes: quotes, Logger: logger})
	tokenService := app.NewTokenService(app.TokenServiceConfig{Tokens: tokens, Logger: logger})

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:             logger,
		AuthConfig:         &config.AuthConfig{Header: "Authorization", Scheme: "Bearer"},
		AppConfig:          &config.AppConfig{Name: "quotes-test", Version: "1.0.0", Environment: "test"},
		HealthHandler:      handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.NewBuildInfo("quotes-test", "1.0.0", "abc", "now")),
		QuoteHandler:       handlers.NewQuoteHandler(quoteService),
		TokenHandler:       handlers.NewTokenHandler(tokenService),
		TokenAuthenticator: tokenService,
		Timeout:            DefaultRequestTimeout,
	})

	return &routerFixture{engine: engine, quotes: quotes, tokens: tokens}
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body["error"]
}

func TestServerNew(t *testing.T) {
	cfg := testServerConfig()
	logger := discardLogger()

	srv := New(cfg, logger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.engine)
	assert.NotNil(t, srv.httpServer)
	assert.Equal(t, cfg, srv.config)
	assert.Equal(t, logger, srv.logger)
	assert.IsType(t, &gin.Engine{}, srv.Engine())
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		port         int
		expectedAddr string
	}{
		{name: "localhost with port 8080", host: "localhost", port: 8080, expectedAddr: "localhost:8080"},
		{name: "0.0.0.0 with port 3000", host: "0.0.0.0", port: 3000, expectedAddr: "0.0.0.0:3000"},
		{name: "127.0.0.1 with port 0", host: "127.0.0.1", port: 0, expectedAddr: "127.0.0.1:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testServerConfig()
			cfg.Host = tt.host
			cfg.Port = tt.port

			assert.Equal(t, tt.expectedAddr, New(cfg, discardLogger()).addr())
		})
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())

	errCh := srv.Start()

	time.Sleep(100 * time.Millisecond)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("server start error: %v", err)
		}
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, ok := <-errCh
	assert.False(t, ok, "error channel should be closed")
}

func TestServerRun(t *testing.T) {
	t.Run("returns nil after cancellation", func(t *testing.T) {
		srv := New(testServerConfig(), discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- srv.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server to stop")
		}
	})

	t.Run("returns listen error", func(t *testing.T) {
		cfg := testServerConfig()
		cfg.Port = -1

		err := New(cfg, discardLogger()).Run(context.Background())

		assert.Error(t, err)
	})
}

func TestSetupRouter_HealthRoutes(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{"/-/live", "/-/ready", "/-/build"} {
		t.Run(path, func(t *testing.T) {
			w := f.do(http.MethodGet, path, "", "")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestSetupRouter_TokenGate(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantError:  app.MsgTokenMissing,
		},
		{
			name:       "wrong scheme",
			header:     "Basic " + activeToken,
			wantStatus: http.StatusUnauthorized,
			wantError:  app.MsgTokenMissing,
		},
		{
			name:       "unknown token",
			token:      "deadbeef",
			wantStatus: http.StatusNotFound,
			wantError:  app.MsgTokenUnknown,
		},
		{
			name:       "active token",
			token:      activeToken,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			if tt.wantStatus == http.StatusOK {
				f.quotes.EXPECT().List(mock.Anything).Return([]domain.Quote{}, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
			switch {
			case tt.header != "":
				req.Header.Set("Authorization", tt.header)
			case tt.token != "":
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			w := httptest.NewRecorder()
			f.engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, w))
			} else {
				assert.JSONEq(t, `[]`, w.Body.String())
			}
		})
	}
}

func TestSetupRouter_TokenRoutesAreUngated(t *testing.T) {
	f := newRouterFixture(t)
	f.tokens.EXPECT().Create(mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		RunAndReturn(func(_ context.Context, value string, now time.Time) (*domain.Token, error) {
			return &domain.Token{ID: 7, Value: value, CreatedAt: now}, nil
		})
	f.tokens.EXPECT().Revoke(mock.Anything, activeToken, mock.Anything).Return(nil)

	w := f.do(http.MethodGet, "/api/tokens", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var issued map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	assert.Len(t, issued["token"], 64)

	w = f.do(http.MethodDelete, "/api/tokens/"+activeToken, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"`+app.MsgTokenRevoked+`"}`, w.Body.String())
}

func TestSetupRouter_DeleteAllIsNotAnID(t *testing.T) {
	f := newRouterFixture(t)
	f.quotes.EXPECT().DeleteAll(mock.Anything).Return(int64(3), nil)

	w := f.do(http.MethodDelete, "/api/quotes/all", activeToken, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Successfully deleted 3 quotes."}`, w.Body.String())
}

func TestSetupRouter_CreateQuote(t *testing.T) {
	f := newRouterFixture(t)
	f.quotes.EXPECT().ExistsByText(mock.Anything, "Stay hungry.", int64(0)).Return(false, nil)
	f.quotes.EXPECT().Create(mock.Anything, domain.NewQuote{Text: "Stay hungry.", Author: "Steve Jobs"}, mock.Anything).
		Return(&domain.Quote{ID: 1, Text: "Stay hungry.", Author: "Steve Jobs"}, nil)

	w := f.do(http.MethodPost, "/api/quotes", activeToken, `{"text":"Stay hungry.","author":"Steve Jobs"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1,"text":"Stay hungry.","author":"Steve Jobs"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_UnknownRoute(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{name: "unknown api path", method: http.MethodGet, path: "/api/nope", token: activeToken},
		{name: "unknown path without token", method: http.MethodGet, path: "/favicon.ico"},
		{name: "unsupported method", method: http.MethodOptions, path: "/api/quotes", token: activeToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)

			w := f.do(tt.method, tt.path, tt.token, "")

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.JSONEq(t, `{"error":"Not found."}`, w.Body.String())
		})
	}
}

func TestSetupRouter_WithoutOptionalHandlers(t *testing.T) {
	engine := gin.New()

	require.NotPanics(t, func() {
		SetupRouter(engine, RouterConfig{Logger: discardLogger()})
	})

	assert.Empty(t, engine.Routes())
}

func TestSetupRouter_QuoteRoutesRequireAuthenticator(t *testing.T) {
	service := app.NewQuoteService(app.QuoteServiceConfig{
		Quotes: mocks.NewMockQuoteRepository(t),
		Logger: discardLogger(),
	})

	assert.Panics(t, func() {
		SetupRouter(gin.New(), RouterConfig{
			Logger:       discardLogger(),
			QuoteHandler: handlers.NewQuoteHandler(service),
		})
	})
}

func TestMaxBodySizeMiddleware(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxRequestSize = 100

	srv := New(cfg, discardLogger())

	srv.Engine().POST("/test", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})

	tests := []struct {
		name       string
		size       int
		wantStatus int
	}{
		{name: "body under limit", size: 50, wantStatus: http.StatusOK},
		{name: "body at limit", size: 100, wantStatus: http.StatusOK},
		{name: "body over limit", size: 101, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(bytes.Repeat([]byte("a"), tt.size)))
			srv.Engine().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
