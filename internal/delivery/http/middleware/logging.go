package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logging writes one structured line per request.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", statusOf(ww)),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}

func statusOf(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
