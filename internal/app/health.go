package app

import (
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/router"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (healthResponse) Message() string {
	return "Service is healthy"
}

func (a *App) health(*router.Request) (any, error) {
	if !a.ready.Load() {
		return nil, goerror.NewBusiness("Service is not ready", goerror.CodeUnavailable)
	}

	return healthResponse{Status: "ok"}, nil
}
