package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/credential/outbound/store/migrations"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
)

const pgUniqueViolation = "23505"

const (
	queryLookup = `SELECT identifier, credential_hash, is_privileged, created_at
FROM credential_accounts WHERE identifier = $1`

	queryInsert = `INSERT INTO credential_accounts (identifier, credential_hash, is_privileged, created_at)
VALUES ($1, $2, $3, $4)`
)

// Postgres stores accounts in the credential_accounts table.
type Postgres struct {
	pool *pgxpool.Pool
	tracing
}

// NewPostgres returns a store over pool. Run Migrate first.
func NewPostgres(pool *pgxpool.Pool, ins instrument.Instrumentation) *Postgres {
	return &Postgres{pool: pool, tracing: tracing{ins: ins, name: "credential.outbound.postgres"}}
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("store: goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}

	return nil
}

func (p *Postgres) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return entity.ErrDuplicateIdentifier
	}

	return err
}

// Lookup reads one account by primary key.
func (p *Postgres) Lookup(ctx context.Context, identifier string) (_ *entity.Account, err error) {
	ctx, span := p.startSpan(ctx, "Lookup")
	defer func() { p.endSpan(span, err) }()

	var acc entity.Account
	err = p.pool.QueryRow(ctx, queryLookup, identifier).
		Scan(&acc.Identifier, &acc.CredentialHash, &acc.IsPrivileged, &acc.CreatedAt)
	if err != nil {
		return nil, p.mapError(err)
	}

	return &acc, nil
}

// Insert adds account; the primary key rejects a taken identifier.
func (p *Postgres) Insert(ctx context.Context, account entity.Account) (err error) {
	ctx, span := p.startSpan(ctx, "Insert")
	defer func() { p.endSpan(span, err) }()

	_, err = p.pool.Exec(ctx, queryInsert,
		account.Identifier,
		account.CredentialHash,
		account.IsPrivileged,
		account.CreatedAt,
	)
	err = p.mapError(err)
	return err
}
