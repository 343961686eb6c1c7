package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var sugar atomic.Pointer[zap.SugaredLogger]

// SetLogger задаёт логгер для всех middleware пакета.
func SetLogger(l *zap.SugaredLogger) {
	sugar.Store(l)
}

func logger() *zap.SugaredLogger {
	if l := sugar.Load(); l != nil {
		return l
	}
	return zap.NewNop().Sugar()
}

// responseRecorder запоминает код ответа и размер тела.
type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// WithLogging пишет в лог каждый запрос: метод, uri, статус, размер ответа, длительность.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		logger().Infow("HTTP request",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", rec.Status(),
			"size", rec.size,
			"duration", time.Since(start),
		)
	})
}
