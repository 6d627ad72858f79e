package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}

			//nolint:errorlint // sentinel must be re-panicked as is
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			if frames := internalFrames(stack); len(frames) > 0 {
				slog.ErrorContext(r.Context(), "panic recovered", "because", rvr, "stack", frames)
			} else {
				slog.ErrorContext(r.Context(), "panic recovered", "because", rvr, "stack", string(stack))
			}

			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

// internalFrames keeps the "internal/...go:line" locations of a debug.Stack dump.
func internalFrames(stack []byte) []string {
	var frames []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)
		_, rel, ok := strings.Cut(line, "/internal/")
		if !ok || !strings.Contains(rel, ".go:") {
			continue
		}
		loc, _, _ := strings.Cut(rel, " ")
		frames = append(frames, "internal/"+loc)
	}
	return frames
}
