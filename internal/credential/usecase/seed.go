package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
)

// SeedPrivilegedAccount makes sure a privileged account exists for email.
// An existing account is left untouched, including one inserted by a
// concurrent seeder between the lookup and the insert.
func (s *Usecase) SeedPrivilegedAccount(ctx context.Context, email, password string) error {
	ctx, span := s.startSpan(ctx, "SeedPrivilegedAccount")
	defer span.End()

	identifier := entity.NormalizeIdentifier(email)
	if identifier == "" || password == "" {
		return errors.New("seed: email and password are required")
	}

	_, err := s.store.Lookup(ctx, identifier)
	if err == nil {
		slog.InfoContext(ctx, "privileged account already present", "identifier", identifier)
		return nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return fmt.Errorf("seed: lookup %s: %w", identifier, err)
	}

	acc, err := s.newAccount(identifier, password, true)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	err = s.store.Insert(ctx, acc)
	if errors.Is(err, entity.ErrDuplicateIdentifier) {
		slog.InfoContext(ctx, "privileged account seeded concurrently", "identifier", identifier)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed: insert %s: %w", identifier, err)
	}

	slog.InfoContext(ctx, "privileged account seeded", "account", acc)

	return nil
}
