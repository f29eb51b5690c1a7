package avatar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	f := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func testConfig(endpoint string) Config {
	return Config{
		Bucket:   "quickauth",
		Region:   "us-east-1",
		Endpoint: endpoint,
		User:     "minio",
		Password: "minio123",
		URLTTL:   5 * time.Minute,
	}
}

func TestNewS3Storage_Disabled(t *testing.T) {
	_, err := NewS3Storage(context.Background(), Config{})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestNewS3Storage_ConfigLoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Storage(context.Background(), testConfig("http://localhost:9000"))
	require.ErrorContains(t, err, "load aws config")
}

func TestS3Storage_UploadUsesPresignedPathStyleURL(t *testing.T) {
	fake, srv := newFakeS3(t)

	st, err := NewS3Storage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)
	st.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	key, err := st.Upload(context.Background(), "admin", []byte("img"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "avatars/admin/2024/3/9/"), key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []byte("img"), fake.objects["/quickauth/"+key])
	assert.Equal(t, "image/png", fake.types["/quickauth/"+key])
}

func TestS3Storage_URL(t *testing.T) {
	_, srv := newFakeS3(t)

	st, err := NewS3Storage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	raw, err := st.URL(context.Background(), "avatars/admin/k")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/quickauth/avatars/admin/k", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Storage_PresignErrors(t *testing.T) {
	_, srv := newFakeS3(t)
	st, err := NewS3Storage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() { presignPutObject, presignGetObject = origPut, origGet })

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("put boom")
	}
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("get boom")
	}

	_, err = st.Upload(context.Background(), "admin", []byte("x"), "image/png")
	require.ErrorContains(t, err, "put boom")

	_, err = st.URL(context.Background(), "k")
	require.ErrorContains(t, err, "get boom")
}

func TestS3Storage_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	st, err := NewS3Storage(context.Background(), testConfig(srv.URL))
	require.NoError(t, err)

	_, err = st.Upload(context.Background(), "admin", []byte("x"), "image/png")
	require.ErrorContains(t, err, "upload failed: 403")
}
