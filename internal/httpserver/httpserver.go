// Package httpserver carries the small shared HTTP plumbing: the health
// endpoint and the listen loop.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Healthz builds the health endpoint. With a ping function it reports 503
// when the dependency check fails; with nil it always answers ok.
func Healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Start logs and serves. A nil mux serves the default mux, which is where
// the Telegram webhook handler registers itself.
func Start(addr string, mux http.Handler) error {
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
