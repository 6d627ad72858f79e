package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
)

type AccountDetailInput struct {
	Identifier string `validate:"required"`
}

type AccountDetailOutput struct {
	Account entity.Account
}

// AccountDetail returns the stored account for an identifier, without exposing its hash.
func (s *Usecase) AccountDetail(ctx context.Context, in AccountDetailInput) (*AccountDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "AccountDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	identifier := entity.NormalizeIdentifier(in.Identifier)
	acc, err := s.store.Lookup(ctx, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to lookup account", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AccountDetailOutput{Account: *acc}, nil
}

type AccountCreateInput struct {
	Email        string `validate:"required,email"`
	Password     string `validate:"required,password"`
	IsPrivileged bool
}

// AccountCreate hashes the password and stores a new account.
// A taken identifier yields a 409 conflict.
func (s *Usecase) AccountCreate(ctx context.Context, in AccountCreateInput) error {
	ctx, span := s.startSpan(ctx, "AccountCreate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acc, err := s.newAccount(in.Email, in.Password, in.IsPrivileged)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	err = s.store.Insert(ctx, acc)
	if errors.Is(err, entity.ErrDuplicateIdentifier) {
		return goerror.NewBusinessWrap(err, "Account already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert account", "account", acc, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "account created", "account", acc)

	return nil
}

func (s *Usecase) newAccount(email, password string, privileged bool) (entity.Account, error) {
	hashed, err := s.hash.Hash(password)
	if err != nil {
		return entity.Account{}, err
	}

	return entity.Account{
		Identifier:     entity.NormalizeIdentifier(email),
		CredentialHash: string(hashed),
		IsPrivileged:   privileged,
		CreatedAt:      s.clock.Now().UTC(),
	}, nil
}
