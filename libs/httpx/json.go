package httpx

import (
	"encoding/json"
	"net/http"
)

// Message is the error and acknowledgement envelope used by every JSON endpoint.
type Message struct {
	Message string `json:"message"`
}

// WriteJSON marshals body before touching the response so a marshal failure still yields a clean 500.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"failed to build response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Message{Message: msg})
}
