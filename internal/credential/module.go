package credential

import (
	"context"

	"github.com/shandysiswandi/authgate/internal/credential/inbound"
	"github.com/shandysiswandi/authgate/internal/credential/outbound/store"
	"github.com/shandysiswandi/authgate/internal/credential/usecase"
	"github.com/shandysiswandi/authgate/internal/pkg/clock"
	"github.com/shandysiswandi/authgate/internal/pkg/hash"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
	"github.com/shandysiswandi/authgate/internal/pkg/jwt"
	"github.com/shandysiswandi/authgate/internal/pkg/router"
	"github.com/shandysiswandi/authgate/internal/pkg/validator"
)

// Dependency lists what the credential module needs from the application.
type Dependency struct {
	Store      store.Store                `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Hash       hash.Hash                  `validate:"required"`
	Issuer     jwt.Issuer                 `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
}

// Module is the wired credential feature. Its HTTP routes are registered by New.
type Module struct {
	uc *usecase.Usecase
}

// New validates dep, builds the usecase and registers the HTTP routes.
func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc, err := usecase.New(usecase.Dependency{
		Store:      dep.Store,
		Validator:  dep.Validator,
		Hash:       dep.Hash,
		Issuer:     dep.Issuer,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})
	if err != nil {
		return nil, err
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return &Module{uc: uc}, nil
}

// SeedPrivilegedAccount creates the bootstrap administrator if it is missing.
func (m *Module) SeedPrivilegedAccount(ctx context.Context, email, password string) error {
	return m.uc.SeedPrivilegedAccount(ctx, email, password)
}
