package inbound

import (
	"context"

	"github.com/shandysiswandi/authgate/internal/credential/usecase"
	"github.com/shandysiswandi/authgate/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Me(ctx context.Context) (*usecase.MeOutput, error)

	AccountDetail(ctx context.Context, in usecase.AccountDetailInput) (*usecase.AccountDetailOutput, error)
	AccountCreate(ctx context.Context, in usecase.AccountCreateInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/authentication", end.Login)
	r.GET("/api/v1/me", end.Me) // need authenticated

	// Account administration (need ROLE_ADMIN)
	r.GET("/api/v1/admin/accounts/:identifier", end.AccountDetail)
	r.POST("/api/v1/admin/accounts", end.AccountCreate)
}
