package recoverer

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
)

// New returns middleware that recovers from panics in next, records the panic on
// the request log entry and responds with status 500 and body rendered as JSON.
// http.ErrAbortHandler is re-panicked so the server can abort the connection.
func New(body any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				httplog.LogEntrySetField(r.Context(), "panic", slog.AnyValue(rvr))
				httplog.LogEntrySetField(r.Context(), "stack", slog.StringValue(string(debug.Stack())))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
