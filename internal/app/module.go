package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/authgate/internal/credential"
)

func (a *App) initModules() {
	mod, err := credential.New(credential.Dependency{
		Store:      a.store,
		Router:     a.router,
		Validator:  a.validator,
		Hash:       a.hash,
		Issuer:     a.jwt,
		Clock:      a.clock,
		Instrument: a.ins,
	})
	if err != nil {
		slog.Error("failed to init module credential", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("bootstrap.admin.enabled") {
		if err := mod.SeedPrivilegedAccount(a.ctx,
			a.config.GetString("bootstrap.admin.email"),
			a.config.GetString("bootstrap.admin.password"),
		); err != nil {
			slog.Error("failed to seed privileged account", "error", err)
			os.Exit(1)
		}
	}
}
