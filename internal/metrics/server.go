package metrics

import (
	"net/http"
	"time"
)

// NewServer builds the /metrics HTTP endpoint for this registry. It is not
// started until ListenAndServe is called on the result.
func (m *Registry) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
