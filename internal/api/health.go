package api

import (
	"net/http"

	"github.com/starford/sgk/internal/store"
)

// Live handles GET /health/live.
func Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns the GET /health/ready handler: 200 only once the corpus is ready.
func Ready(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := st.Status()
		code := http.StatusOK
		if status != store.StatusReady {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{"status": string(status)})
	}
}
