package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/curator"
	curatorhttp "github.com/fwojciec/curator/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns document from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := curatorhttp.NewFetcher()
		defer fetcher.Close()

		doc, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", doc.Body)
		assert.Equal(t, http.StatusOK, doc.Status)
		assert.Equal(t, "text/html", doc.ContentType)
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := curatorhttp.NewFetcher(curatorhttp.WithUserAgent("test-agent"))
		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", got)
	})

	t.Run("truncates body at max bytes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer server.Close()

		fetcher := curatorhttp.NewFetcher(curatorhttp.WithMaxBytes(10))
		doc, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, doc.Body, 10)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := curatorhttp.NewFetcher(curatorhttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.True(t, curator.IsTransient(err))
	})

	t.Run("returns context error on cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		fetcher := curatorhttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("classifies non-existent host as transient", func(t *testing.T) {
		t.Parallel()

		fetcher := curatorhttp.NewFetcher(curatorhttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assert.True(t, curator.IsTransient(err))
		assert.Equal(t, curator.EUNAVAILABLE, curator.ErrorCode(err))
	})

	t.Run("classifies status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			status    int
			transient bool
		}{
			{http.StatusNotFound, false},
			{http.StatusForbidden, false},
			{http.StatusTooManyRequests, true},
			{http.StatusInternalServerError, true},
			{http.StatusBadGateway, true},
		}
		for _, tt := range tests {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			fetcher := curatorhttp.NewFetcher()
			_, err := fetcher.Fetch(context.Background(), server.URL)
			server.Close()

			var fe *curator.FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.status, fe.Status)
			assert.Equal(t, tt.transient, fe.Transient, "status %d", tt.status)
		}
	})
}
