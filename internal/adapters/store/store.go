// Package store provides the database/sql record store for quotes and tokens.
// It runs on SQLite (modernc.org/sqlite) or PostgreSQL (pgx stdlib).
//
// Queries are written with "?" placeholders and rebound per dialect.
// Unique violations are translated to domain conflicts; zero affected rows
// are translated to domain not-found errors.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
)

const (
	// instrumentationName is used for the OpenTelemetry meter.
	instrumentationName = "github.com/jsamuelsen/quotes-service/internal/adapters/store"

	// DriverSQLite selects the embedded SQLite engine.
	DriverSQLite = "sqlite"

	// DriverPostgres selects PostgreSQL through pgx.
	DriverPostgres = "postgres"

	defaultPingTimeout = 5 * time.Second
)

// ErrUnsupportedDriver is returned for a driver other than sqlite or postgres.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config configures a record store.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// DSN is a file path or URI for sqlite and a connection URL for postgres.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Migrate applies embedded schema migrations on open.
	Migrate bool

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// Store is the record store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger

	tracer trace.Tracer

	opDuration metric.Float64Histogram
	opTotal    metric.Int64Counter
}

// Open connects to the database, verifies the connection and optionally
// applies migrations.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	const op = "store.Open"

	if cfg == nil {
		return nil, fmt.Errorf("%s: config is required", op)
	}

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%s: dsn is required", op)
	}

	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Driver == DriverSQLite {
		if err := ensureSQLiteDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: opening %s: %w", op, cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Driver, err)
	}

	s, err := New(db, cfg.Driver, cfg.Logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Migrate {
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s, nil
}

// New wraps an open handle. driver selects the SQL dialect.
func New(db *sql.DB, driver string, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("sql db is required")
	}

	if _, err := sqlDriverName(driver); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter(instrumentationName)

	opDuration, err := meter.Float64Histogram(
		"db.client.operation.duration",
		metric.WithDescription("Duration of record store operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	opTotal, err := meter.Int64Counter(
		"db.client.operation.total",
		metric.WithDescription("Total number of record store operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation counter: %w", err)
	}

	return &Store{
		db:         db,
		driver:     driver,
		logger:     logger.With(slog.String("component", "store.Store"), slog.String("driver", driver)),
		tracer:     telemetry.Tracer(),
		opDuration: opDuration,
		opTotal:    opTotal,
	}, nil
}

// Quotes returns the quote repository backed by this store.
func (s *Store) Quotes() *Quotes {
	return &Quotes{s: s}
}

// Tokens returns the token repository backed by this store.
func (s *Store) Tokens() *Tokens {
	return &Tokens{s: s}
}

// Name returns the driver name for health check identification.
func (s *Store) Name() string {
	return s.driver
}

// Check pings the database.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.driver, err)
	}

	return nil
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// rebind converts "?" placeholders to the dialect's form.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := range len(query) {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}

		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

// begin starts a span for one store operation. The returned func records
// the outcome; not-found is an expected result, not an error.
func (s *Store) begin(ctx context.Context, op string) (context.Context, func(*error)) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", s.driver),
			attribute.String("db.operation", op),
		),
	)

	return ctx, func(errp *error) {
		defer span.End()

		result := "ok"

		var err error
		if errp != nil {
			err = *errp
		}

		switch {
		case err == nil:
		case domain.IsNotFound(err):
			result = "not_found"
		case domain.IsConflict(err):
			result = "conflict"
		default:
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		attrs := metric.WithAttributes(
			attribute.String("db.system", s.driver),
			attribute.String("db.operation", op),
			attribute.String("result", result),
		)
		s.opDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		s.opTotal.Add(ctx, 1, attrs)
	}
}

// ensureSQLiteDir creates the parent directory of a file-backed SQLite DSN.
func ensureSQLiteDir(dsn string) error {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	if p == "" || p == ":memory:" {
		return nil
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating sqlite directory %s: %w", dir, err)
	}

	return nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
