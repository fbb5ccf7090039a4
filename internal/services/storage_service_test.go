// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshop/riteshop-backend/internal/config"
)

func localStorage(t *testing.T) *StorageService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.AWS.S3Bucket = "riteshop-assets"
	cfg.AWS.Region = "us-east-1"

	svc, err := NewStorageService(cfg)
	require.NoError(t, err)
	svc.localDir = t.TempDir()
	return svc
}

// multipartImage builds a real multipart upload so header.Size and the
// content type come from the same parsing path the handler uses.
func multipartImage(t *testing.T, filename string, payload []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	return file, header
}

func TestUploadProductImageLocalPersists(t *testing.T) {
	svc := localStorage(t)
	file, header := multipartImage(t, "shirt.png", []byte("png-bytes"))
	defer file.Close()

	result, err := svc.UploadProductImage(file, header)
	require.NoError(t, err)

	assert.Contains(t, result.URL, "/uploads/products/")
	assert.Equal(t, int64(len("png-bytes")), result.Size)

	stored, err := os.ReadFile(filepath.Join(svc.localDir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), stored)
}

func TestUploadProductImageRejectsType(t *testing.T) {
	svc := localStorage(t)
	file, header := multipartImage(t, "malware.exe", []byte("nope"))
	defer file.Close()

	_, err := svc.UploadProductImage(file, header)
	assert.ErrorContains(t, err, "not allowed")
}

func TestUploadProductImageRejectsOversize(t *testing.T) {
	svc := localStorage(t)
	file, header := multipartImage(t, "huge.jpg", bytes.Repeat([]byte("x"), productImageMaxSize+1))
	defer file.Close()

	_, err := svc.UploadProductImage(file, header)
	assert.ErrorContains(t, err, "exceeds maximum")
}

func TestDeleteFileLocal(t *testing.T) {
	svc := localStorage(t)
	file, header := multipartImage(t, "mug.jpg", []byte("jpg-bytes"))
	defer file.Close()

	result, err := svc.UploadProductImage(file, header)
	require.NoError(t, err)

	path := filepath.Join(svc.localDir, filepath.FromSlash(result.Key))
	require.FileExists(t, path)

	require.NoError(t, svc.DeleteFile(result.Key))
	assert.NoFileExists(t, path)

	// Deleting an already-gone key stays quiet.
	assert.NoError(t, svc.DeleteFile(result.Key))
}

func TestKeyFromURL(t *testing.T) {
	svc := localStorage(t)

	assert.Equal(t, "products/abc.png",
		svc.KeyFromURL("http://localhost:8080/uploads/products/abc.png"))
	assert.Equal(t, "products/abc.png",
		svc.KeyFromURL("https://riteshop-assets.s3.us-east-1.amazonaws.com/products/abc.png"))
	assert.Equal(t, "", svc.KeyFromURL("https://images.example.com/shirt.png"))
	assert.Equal(t, "", svc.KeyFromURL(""))
}
