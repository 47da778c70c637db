package planner

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON envelope of every planner API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func success(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, Response{Success: true, Data: data})
}

// failure writes an error envelope. data carries the current view when the
// failure left the session in a state the client should render.
func failure(w http.ResponseWriter, code int, message string, detail, data any) {
	writeJSON(w, code, Response{Message: message, Error: detail, Data: data})
}
