// Package store persists credential accounts.
//
// Three drivers share one contract: Lookup returns goerror.ErrNotFound for an
// unknown identifier and Insert returns entity.ErrDuplicateIdentifier when the
// identifier is taken. Insert is atomic, so of two concurrent inserts of the
// same identifier exactly one succeeds.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// ErrUnsupportedDriver is returned by NewFromDriver for an unknown driver name.
var ErrUnsupportedDriver = errors.New("store: unsupported driver")

// Store looks up and inserts accounts.
type Store interface {
	Lookup(ctx context.Context, identifier string) (*entity.Account, error)
	Insert(ctx context.Context, account entity.Account) error
}

// FactoryOptions carries the connections a driver may need.
type FactoryOptions struct {
	Postgres   *pgxpool.Pool
	Redis      *redis.Client
	Instrument instrument.Instrumentation
}

// NewFromDriver returns the Store named by driver.
func NewFromDriver(driver string, opts FactoryOptions) (Store, error) {
	ins := opts.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		if opts.Postgres == nil {
			return nil, fmt.Errorf("store: %s driver requires a pool", DriverPostgres)
		}
		return NewPostgres(opts.Postgres, ins), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("store: %s driver requires a client", DriverRedis)
		}
		return NewRedis(opts.Redis, ins), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

type tracing struct {
	ins  instrument.Instrumentation
	name string
}

func (t tracing) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.ins.Tracer(t.name).Start(ctx, op)
}

func (tracing) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
