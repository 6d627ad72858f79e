package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/clock"
	"github.com/shandysiswandi/authgate/internal/pkg/hash"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
	"github.com/shandysiswandi/authgate/internal/pkg/jwt"
	"github.com/shandysiswandi/authgate/internal/pkg/validator"
)

type repoStore interface {
	Lookup(ctx context.Context, identifier string) (*entity.Account, error)
	Insert(ctx context.Context, account entity.Account) error
}

// Usecase implements login, caller introspection, account administration
// and bootstrap seeding.
type Usecase struct {
	store     repoStore
	validator validator.Validator
	hash      hash.Hash
	issuer    jwt.Issuer
	clock     clock.Clocker
	ins       instrument.Instrumentation

	// dummyHash is verified against when the account does not exist so an
	// unknown identifier costs the same as a wrong password.
	dummyHash string
}

// Dependency lists the collaborators of Usecase.
type Dependency struct {
	Store      repoStore
	Validator  validator.Validator
	Hash       hash.Hash
	Issuer     jwt.Issuer
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

// New builds a Usecase. It hashes a placeholder secret up front, so it fails
// when the password hash is misconfigured.
func New(dep Dependency) (*Usecase, error) {
	dummy, err := dep.Hash.Hash("authgate-unknown-account")
	if err != nil {
		return nil, err
	}

	return &Usecase{
		store:     dep.Store,
		validator: dep.Validator,
		hash:      dep.Hash,
		issuer:    dep.Issuer,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		dummyHash: string(dummy),
	}, nil
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("credential.usecase").Start(ctx, name)
}
