package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type s3Call struct {
	method, path, contentType, disposition string
}

func fakeS3(t *testing.T) (*httptest.Server, func() []s3Call) {
	t.Helper()
	var mu sync.Mutex
	var calls []s3Call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		calls = append(calls, s3Call{r.Method, r.URL.Path, r.Header.Get("Content-Type"), r.Header.Get("Content-Disposition")})
		mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>media</Name><Prefix>videos/</Prefix><KeyCount>1</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>
  <Contents><Key>videos/a.mp4</Key><LastModified>2026-01-02T03:04:05.000Z</LastModified><Size>42</Size></Contents>
</ListBucketResult>`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []s3Call {
		mu.Lock()
		defer mu.Unlock()
		return append([]s3Call(nil), calls...)
	}
}

func TestR2StoreRoundTrip(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	srv, calls := fakeS3(t)
	ctx := context.Background()

	store, err := NewR2Store(ctx, R2Config{
		AccountID: "acct", AccessKeyID: "k", AccessKeySecret: "s",
		Bucket: "media", CDNBaseURL: "https://cdn.test/", Endpoint: srv.URL,
	})
	require.NoError(t, err)

	url, err := store.Upload(ctx, "videos/a.mp4", strings.NewReader("video"), "video/mp4", "Lésson 1.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/videos/a.mp4", url)

	objects, err := store.List(ctx, "videos/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "videos/a.mp4", objects[0].Key)
	assert.EqualValues(t, 42, objects[0].Size)
	assert.Equal(t, "https://cdn.test/videos/a.mp4", objects[0].URL)

	require.NoError(t, store.Remove(ctx, "videos/a.mp4"))

	got := calls()
	require.Len(t, got, 3)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/media/videos/a.mp4", got[0].path)
	assert.Equal(t, "video/mp4", got[0].contentType)
	assert.Equal(t, `inline; filename="Lesson 1.mp4"`, got[0].disposition)
	assert.Equal(t, http.MethodGet, got[1].method)
	assert.Equal(t, http.MethodDelete, got[2].method)
}

func TestR2StoreDefaultPublicURL(t *testing.T) {
	store, err := NewR2Store(context.Background(), R2Config{AccountID: "acct", Bucket: "media"})
	require.NoError(t, err)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com/media/x/y.png", store.PublicURL("/x/y.png"))
}
