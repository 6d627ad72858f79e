package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
)

const redisKeyPrefix = "credential:account:"

// redisRecord is the stored JSON shape; entity.Account's JSON form omits the hash.
type redisRecord struct {
	Identifier     string    `json:"identifier"`
	CredentialHash string    `json:"credential_hash"`
	IsPrivileged   bool      `json:"is_privileged"`
	CreatedAt      time.Time `json:"created_at"`
}

// Redis stores each account as a JSON string under credential:account:<identifier>.
type Redis struct {
	client *redis.Client
	tracing
}

// NewRedis returns a store over client.
func NewRedis(client *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, tracing: tracing{ins: ins, name: "credential.outbound.redis"}}
}

// Lookup reads and decodes the account under identifier.
func (r *Redis) Lookup(ctx context.Context, identifier string) (_ *entity.Account, err error) {
	ctx, span := r.startSpan(ctx, "Lookup")
	defer func() { r.endSpan(span, err) }()

	raw, err := r.client.Get(ctx, redisKeyPrefix+identifier).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec redisRecord
	if err = json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	return &entity.Account{
		Identifier:     rec.Identifier,
		CredentialHash: rec.CredentialHash,
		IsPrivileged:   rec.IsPrivileged,
		CreatedAt:      rec.CreatedAt,
	}, nil
}

// Insert writes account with SETNX so a taken identifier is never overwritten.
func (r *Redis) Insert(ctx context.Context, account entity.Account) (err error) {
	ctx, span := r.startSpan(ctx, "Insert")
	defer func() { r.endSpan(span, err) }()

	payload, err := json.Marshal(redisRecord(account))
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, redisKeyPrefix+account.Identifier, payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		err = entity.ErrDuplicateIdentifier
	}
	return err
}
