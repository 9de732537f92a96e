package middleware

import (
	"net/http"
	"runtime/debug"

	"latch/internal/logs"
	"latch/internal/models"
)

// Recoverer перехватывает панику в обработчике, пишет лог со стеком
// и возвращает 500 в едином JSON-конверте {ok:false,...}.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				reqid := GetRequestID(r)
				logs.Logger.Errorf("panic: %v reqid=%s uri=%s method=%s\nstack:\n%s",
					rec, reqid, r.RequestURI, r.Method, string(debug.Stack()))
				models.WriteErrorExtra(w, http.StatusInternalServerError,
					"internal_error", map[string]any{"reqid": reqid})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
