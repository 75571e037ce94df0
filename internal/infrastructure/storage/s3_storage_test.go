package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ReceiptStorage_Validation(t *testing.T) {
	_, err := NewS3ReceiptStorage(nil, nil)
	assert.ErrorContains(t, err, "configuration is required")

	_, err = NewS3ReceiptStorage(&config.StorageConfig{AccessKey: "k", SecretKey: "s"}, nil)
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3ReceiptStorage(&config.StorageConfig{Bucket: "receipts"}, nil)
	assert.ErrorContains(t, err, "credentials are required")
}

func TestS3ReceiptStorage_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "explicit public base",
			cfg:  config.StorageConfig{PublicBaseURL: "https://cdn.example.com/receipts/"},
			want: "https://cdn.example.com/receipts/abc.jpg",
		},
		{
			name: "path style endpoint",
			cfg:  config.StorageConfig{Endpoint: "minio:9000", UsePathStyle: true},
			want: "http://minio:9000/receipts/abc.jpg",
		},
		{
			name: "virtual host endpoint",
			cfg:  config.StorageConfig{Endpoint: "storage.example.com", UseSSL: true},
			want: "https://receipts.storage.example.com/abc.jpg",
		},
		{
			name: "aws default",
			cfg:  config.StorageConfig{Region: "ap-southeast-1"},
			want: "https://receipts.s3.ap-southeast-1.amazonaws.com/abc.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Bucket = "receipts"
			cfg.AccessKey = "k"
			cfg.SecretKey = "s"
			s, err := NewS3ReceiptStorage(&cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PublicURL("abc.jpg"))
		})
	}
}

func TestS3ReceiptStorage_Upload(t *testing.T) {
	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     []byte
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath, gotBody, contentType = r.URL.Path, body, r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3ReceiptStorage(&config.StorageConfig{
		Endpoint:     srv.URL,
		Bucket:       "receipts",
		AccessKey:    "k",
		SecretKey:    "s",
		UsePathStyle: true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = s.Upload(context.Background(), "tenant-1-abc.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/receipts/tenant-1-abc.png", gotPath)
	assert.Contains(t, string(gotBody), "png-bytes")
	assert.Equal(t, "image/png", contentType)
}

func TestS3ReceiptStorage_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	s, err := NewS3ReceiptStorage(&config.StorageConfig{
		Endpoint: srv.URL, Bucket: "receipts", AccessKey: "k", SecretKey: "s", UsePathStyle: true,
	}, nil)
	require.NoError(t, err)

	err = s.Upload(context.Background(), "x.png", []byte("x"), "image/png")
	assert.ErrorContains(t, err, "failed to upload object")
	assert.Error(t, s.Upload(context.Background(), "", nil, ""))
}
