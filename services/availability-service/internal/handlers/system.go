package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/meetslots/libs/httpx"
)

func Ping(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteMessage(w, http.StatusOK, "Hello!")
}

// NotFound answers every request no other route claims, including known paths with an
// unsupported method.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteMessage(w, http.StatusNotFound, "No matching route.")
}
