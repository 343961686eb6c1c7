package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
)

// gzipWriter сжимает тело ответа. Заголовки уходят клиенту с первым непустым
// Write или при Close; ответ без тела идёт без Content-Encoding.
type gzipWriter struct {
	http.ResponseWriter
	zw         *gzip.Writer
	status     int
	headerSent bool
}

func (g *gzipWriter) WriteHeader(status int) {
	if g.headerSent || g.status != 0 {
		return
	}
	if status < http.StatusOK {
		g.ResponseWriter.WriteHeader(status)
		return
	}
	g.status = status
	if !compressible(status) {
		g.sendHeader(false)
	}
}

func (g *gzipWriter) Write(b []byte) (int, error) {
	if g.status == 0 {
		g.status = http.StatusOK
	}
	if !g.headerSent {
		if len(b) == 0 {
			return 0, nil
		}
		g.sendHeader(compressible(g.status))
	}
	if g.zw == nil {
		return g.ResponseWriter.Write(b)
	}
	return g.zw.Write(b)
}

func (g *gzipWriter) sendHeader(compress bool) {
	g.headerSent = true
	if compress {
		g.Header().Del("Content-Length")
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Add("Vary", "Accept-Encoding")
		g.zw = gzip.NewWriter(g.ResponseWriter)
	}
	g.ResponseWriter.WriteHeader(g.status)
}

func (g *gzipWriter) Close() error {
	if !g.headerSent && g.status != 0 {
		g.sendHeader(false)
	}
	if g.zw == nil {
		return nil
	}
	return g.zw.Close()
}

func compressible(status int) bool {
	return status != http.StatusNoContent && status != http.StatusNotModified
}

// WithGzip сжимает ответ, если клиент принимает gzip.
func WithGzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipWriter{ResponseWriter: w}
		defer func() {
			if err := gw.Close(); err != nil {
				logger().Warnw("gzip: close writer", "error", err)
			}
		}()
		next.ServeHTTP(gw, r)
	})
}
