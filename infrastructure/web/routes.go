package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"chat-relay/infrastructure/ws"
	"chat-relay/services"
)

// NewRouter builds the route table for the relay's HTTP surface.
func NewRouter(log *slog.Logger, chat *ws.Handler, blobs *services.BlobService) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/api/chat", chat)
	r.HandleFunc("/api/upload", HandleUpload(log, blobs)).Methods(http.MethodPost)
	r.HandleFunc("/api/file/{fileId}", HandleFile(log, blobs)).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}
