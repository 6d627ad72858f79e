package inbound

import (
	"github.com/shandysiswandi/authgate/internal/credential/usecase"
	"github.com/shandysiswandi/authgate/internal/pkg/router"
)

// HTTPEndpoint exposes the login, caller and account administration handlers.
type HTTPEndpoint struct {
	uc uc
}

// Login exchanges an email and password for a bearer token.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{Token: resp.Token}, nil
}

// Me returns the subject and roles the request was authenticated as.
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Me(r.Context())
	if err != nil {
		return nil, err
	}

	return MeResponse{
		Subject:      resp.Subject,
		Roles:        resp.Roles,
		IsPrivileged: resp.IsPrivileged,
	}, nil
}

func (h *HTTPEndpoint) AccountDetail(r *router.Request) (any, error) {
	resp, err := h.uc.AccountDetail(r.Context(), usecase.AccountDetailInput{
		Identifier: r.GetParam("identifier"),
	})
	if err != nil {
		return nil, err
	}

	return AccountResponse{
		Identifier:   resp.Account.Identifier,
		IsPrivileged: resp.Account.IsPrivileged,
		CreatedAt:    resp.Account.CreatedAt,
	}, nil
}

func (h *HTTPEndpoint) AccountCreate(r *router.Request) (any, error) {
	var req AccountCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.AccountCreate(r.Context(), usecase.AccountCreateInput{
		Email:        req.Email,
		Password:     req.Password,
		IsPrivileged: req.IsPrivileged,
	}); err != nil {
		return nil, err
	}

	return AccountCreateResponse{}, nil
}
