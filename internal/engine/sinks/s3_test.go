package sinks

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	uploads []mockUpload
	err     error
}

type mockUpload struct {
	bucket      string
	key         string
	body        []byte
	contentType string
}

func (m *mockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	upload := mockUpload{
		bucket: *input.Bucket,
		key:    *input.Key,
		body:   body,
	}
	if input.ContentType != nil {
		upload.contentType = *input.ContentType
	}
	m.uploads = append(m.uploads, upload)
	return &manager.UploadOutput{}, nil
}

func TestS3Sink_Name(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		prefix   string
		expected string
	}{
		{name: "bucket only", bucket: "artifacts", expected: "s3(artifacts)"},
		{name: "bucket with prefix", bucket: "artifacts", prefix: "lambda/releases", expected: "s3(artifacts/lambda/releases)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewS3SinkWithUploader(tt.bucket, tt.prefix, &mockUploader{})
			assert.Equal(t, tt.expected, sink.Name())
			assert.Equal(t, S3SinkKind, sink.Kind())
		})
	}
}

func TestS3Sink_Write(t *testing.T) {
	tests := []struct {
		name            string
		prefix          string
		path            string
		wantKey         string
		wantContentType string
	}{
		{
			name:            "archive without prefix",
			path:            "bundle.zip",
			wantKey:         "bundle.zip",
			wantContentType: "application/zip",
		},
		{
			name:            "archive with prefix",
			prefix:          "releases/2024",
			path:            "bundle.zip",
			wantKey:         "releases/2024/bundle.zip",
			wantContentType: "application/zip",
		},
		{
			name:            "jar archive",
			path:            "app.jar",
			wantKey:         "app.jar",
			wantContentType: "application/java-archive",
		},
		{
			name:    "unknown extension",
			path:    "bundle.bin",
			wantKey: "bundle.bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader("artifacts", tt.prefix, uploader)

			err := sink.Write(t.Context(), tt.path, bytes.NewBufferString("PK\x03\x04"))
			require.NoError(t, err)

			require.Len(t, uploader.uploads, 1)
			assert.Equal(t, "artifacts", uploader.uploads[0].bucket)
			assert.Equal(t, tt.wantKey, uploader.uploads[0].key)
			assert.Equal(t, "PK\x03\x04", string(uploader.uploads[0].body))
			assert.Equal(t, tt.wantContentType, uploader.uploads[0].contentType)
		})
	}
}

func TestS3Sink_WriteError(t *testing.T) {
	uploader := &mockUploader{err: errors.New("access denied")}
	sink := NewS3SinkWithUploader("artifacts", "releases", uploader)

	err := sink.Write(t.Context(), "bundle.zip", bytes.NewBufferString("data"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "s3://artifacts/releases/bundle.zip")
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3Sink(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	sink, err := NewS3Sink(t.Context(), S3Config{
		Bucket:          "artifacts",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		Prefix:          "releases",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		ForcePathStyle:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "s3(artifacts/releases)", sink.Name())
	require.NoError(t, sink.Close(t.Context()))
}

// writeCABundle writes a PEM file holding a single self-signed certificate.
func writeCABundle(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "bestzip test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0644))
	return path
}

func TestNewS3Sink_CustomCABundle(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_CA_BUNDLE", writeCABundle(t))

	sink, err := NewS3Sink(t.Context(), S3Config{
		Bucket:          "artifacts",
		Region:          "eu-west-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3(artifacts)", sink.Name())
}

func TestNewHTTPClient(t *testing.T) {
	client := newHTTPClient()
	tr := client.GetTransport()
	pooled := cleanhttp.DefaultPooledTransport()

	assert.Equal(t, pooled.MaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, pooled.IdleConnTimeout, tr.IdleConnTimeout)
	assert.True(t, tr.ForceAttemptHTTP2)
}
