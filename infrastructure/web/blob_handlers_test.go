package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"chat-relay/repositories"
	"chat-relay/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	options := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	blobService := services.NewBlobService(
		repositories.NewBlobRepository(db),
		slog.Default(),
		services.ReservedHeadroom+512<<20,
	)

	r := mux.NewRouter()
	r.HandleFunc("/api/upload", HandleUpload(slog.Default(), blobService)).Methods(http.MethodPost)
	r.HandleFunc("/api/file/{fileId}", HandleFile(slog.Default(), blobService)).Methods(http.MethodGet)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func multipartUpload(t *testing.T, fileName, declaredType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("type", declaredType))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func Test_Upload_Then_Retrieve(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	payload := []byte("attached file content")
	body, contentType := multipartUpload(t, "notes.txt", "text/plain", payload)
	resp, err := http.Post(server.URL+"/api/upload", contentType, body)
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusOK, resp.StatusCode)

	var uploaded uploadResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&uploaded))
	req.True(uploaded.Success)
	req.Equal("notes.txt", uploaded.FileName)
	req.Equal(int64(len(payload)), uploaded.FileSize)
	req.NotEmpty(uploaded.URL)
	req.Greater(uploaded.ExpiresAt, int64(0))

	fetched, err := http.Get(server.URL + uploaded.URL)
	req.NoError(err)
	defer func() { _ = fetched.Body.Close() }()
	req.Equal(http.StatusOK, fetched.StatusCode)
	req.Equal("text/plain", fetched.Header.Get("Content-Type"))
	req.Contains(fetched.Header.Get("Content-Disposition"), "notes.txt")

	data, err := io.ReadAll(fetched.Body)
	req.NoError(err)
	req.Equal(payload, data)
}

func Test_Upload_Without_File_Is_Bad_Request(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/api/upload", writer.FormDataContentType(), body)
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_Oversized_Upload_Is_Rejected(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	body, contentType := multipartUpload(t, "huge.bin", "application/octet-stream",
		make([]byte, services.MaxBlobSize+1))
	resp, err := http.Post(server.URL+"/api/upload", contentType, body)
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	var rejected uploadResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&rejected))
	req.False(rejected.Success)
}

func Test_Unknown_File_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/file/no-such-blob")
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()
	req.Equal(http.StatusNotFound, resp.StatusCode)
}
