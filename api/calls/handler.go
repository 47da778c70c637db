// Package calls exposes recorded optimizer calls over HTTP.
package calls

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/sessionplanner/core/calllog"
)

// NewHandler returns an HTTP handler listing optimizer calls via GET /api/v1/calls.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
// Supported filters: session_id, status, start and end (RFC 3339) and limit.
func NewHandler(store calllog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := calllog.Query{
			SessionID: params.Get("session_id"),
			Status:    params.Get("status"),
		}
		for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			if s := params.Get(name); s != "" {
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					http.Error(w, "invalid "+name+": "+err.Error(), http.StatusBadRequest)
					return
				}
				*dst = t
			}
		}
		if s := params.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			q.Limit = n
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []calllog.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
