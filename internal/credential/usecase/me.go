package usecase

import (
	"context"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/principal"
)

type MeOutput struct {
	Subject      string
	Roles        []string
	IsPrivileged bool
}

// Me describes the caller the request was authenticated as.
func (s *Usecase) Me(ctx context.Context) (*MeOutput, error) {
	_, span := s.startSpan(ctx, "Me")
	defer span.End()

	id := principal.FromContext(ctx)
	if id.IsAnonymous() {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return &MeOutput{
		Subject:      id.Subject,
		Roles:        id.Roles,
		IsPrivileged: id.HasRole(entity.RoleAdmin),
	}, nil
}
