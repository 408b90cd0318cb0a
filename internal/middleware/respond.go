package middleware

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tempizhere/surl/internal/models"
)

// WriteJSON пишет значение как JSON с заданным статусом
func WriteJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// WriteError пишет структурированную ошибку {"error": ..., "code": ...}
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, models.ErrorResponse{Error: message, Code: code})
}
