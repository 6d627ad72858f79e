package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/authgate/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in app.maintenance.endpoints.
// Entries are either a route pattern ("/api/v1/me") or a method and pattern
// ("POST /api/v1/authentication"). The list is read per request so a config
// reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			for _, entry := range cfg.GetArray("app.maintenance.endpoints") {
				method, path, scoped := strings.Cut(entry, " ")
				if !scoped {
					method, path = "", entry
				}
				path = strings.TrimSpace(path)

				if path == route && (method == "" || strings.EqualFold(method, r.Method)) {
					writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
