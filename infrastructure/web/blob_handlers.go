// Package web exposes the relay's plain HTTP surface: blob upload and
// retrieval, plus the route table.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "chat-relay/errors"
	"chat-relay/services"
)

type uploadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	URL       string `json:"url,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

// HandleUpload accepts a single multipart payload ("file") with a
// declared logical type ("type") and returns a retrieval reference.
func HandleUpload(log *slog.Logger, blobs *services.BlobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "No file provided", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxBlobSize+1))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, uploadResponse{Success: false, Message: "Upload failed"})
			return
		}

		meta, err := blobs.Put(data, r.FormValue("type"), header.Filename)
		switch {
		case errors.Is(err, apperrors.ErrTooLarge):
			writeJSON(w, http.StatusBadRequest, uploadResponse{
				Success: false,
				Message: "file size may not exceed 25MB",
			})
			return
		case errors.Is(err, apperrors.ErrInsufficientSpace):
			writeJSON(w, http.StatusInsufficientStorage, uploadResponse{
				Success: false,
				Message: apperrors.ErrInsufficientSpace.Error(),
			})
			return
		case err != nil:
			log.Error("blob upload failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, uploadResponse{Success: false, Message: "Upload failed"})
			return
		}

		writeJSON(w, http.StatusOK, uploadResponse{
			Success:   true,
			URL:       "/api/file/" + meta.ID,
			FileName:  meta.FileName,
			FileSize:  meta.Size,
			ExpiresAt: meta.ExpiresAt,
		})
	}
}

// HandleFile serves a stored blob by id with its declared type and name.
func HandleFile(log *slog.Logger, blobs *services.BlobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID := mux.Vars(r)["fileId"]

		data, meta, err := blobs.Get(fileID)
		switch {
		case errors.Is(err, apperrors.ErrBlobNotFound):
			http.Error(w, "File not found or expired", http.StatusNotFound)
			return
		case err != nil:
			log.Error("blob retrieval failed", "blob_id", fileID, "error", err)
			http.Error(w, "Error retrieving file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", meta.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", meta.FileName))
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		_, _ = w.Write(data)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
