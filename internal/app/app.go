package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/shandysiswandi/authgate/internal/credential/outbound/store"
	"github.com/shandysiswandi/authgate/internal/pkg/authz"
	"github.com/shandysiswandi/authgate/internal/pkg/clock"
	"github.com/shandysiswandi/authgate/internal/pkg/config"
	"github.com/shandysiswandi/authgate/internal/pkg/hash"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
	"github.com/shandysiswandi/authgate/internal/pkg/jwt"
	"github.com/shandysiswandi/authgate/internal/pkg/router"
	"github.com/shandysiswandi/authgate/internal/pkg/uid"
	"github.com/shandysiswandi/authgate/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	hash      hash.Hash
	uuid      uid.StringID
	jwt       *jwt.Symmetric

	// resources
	dbConn     *pgxpool.Pool
	cacheConn  *redis.Client
	store      store.Store
	authorizer *authz.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server
	ready      *atomic.Bool

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
// Any failure is logged and terminates the process.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		ready:  atomic.NewBool(false),
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initCredentialStore()
	app.initAuthorizer()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	app.ready.Store(true)

	return app
}
