package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	Token string
}

// Login checks the credentials and issues a signed token. An unknown account
// and a wrong password produce the same error.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	identifier := entity.NormalizeIdentifier(in.Email)
	acc, err := s.store.Lookup(ctx, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		s.hash.Verify(s.dummyHash, in.Password)
		slog.WarnContext(ctx, "account not found", "identifier", identifier)
		return nil, goerror.NewBusiness("Bad credentials", goerror.CodeForbidden)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to lookup account", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.hash.Verify(acc.CredentialHash, in.Password) {
		slog.WarnContext(ctx, "password does not match", "identifier", identifier)
		return nil, goerror.NewBusiness("Bad credentials", goerror.CodeForbidden)
	}

	token, err := s.issuer.Issue(acc.Identifier, acc.Roles())
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue token", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "account authenticated", "account", acc)

	return &LoginOutput{Token: token}, nil
}
