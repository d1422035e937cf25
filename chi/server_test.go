package chi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/curator"
	curchi "github.com/fwojciec/curator/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusStub struct {
	last *curator.RunState
	runs int
}

func (s statusStub) Last() *curator.RunState { return s.last }
func (s statusStub) Runs() int               { return s.runs }

func TestServer(t *testing.T) {
	t.Parallel()

	t.Run("reports health", func(t *testing.T) {
		t.Parallel()

		srv := curchi.NewServer(":0", statusStub{}, nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("reports no runs yet", func(t *testing.T) {
		t.Parallel()

		srv := curchi.NewServer(":0", statusStub{}, nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"runs":0,"last":null}`, rec.Body.String())
	})

	t.Run("reports the last run", func(t *testing.T) {
		t.Parallel()

		last := &curator.RunState{
			ID:       "run-3",
			Decision: curator.DecisionPublish,
			State:    curator.StateIdle,
			Summary:  curator.Summary{Accepted: 4},
		}
		srv := curchi.NewServer(":0", statusStub{last: last, runs: 3}, nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		var got curchi.Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 3, got.Runs)
		require.NotNil(t, got.Last)
		assert.Equal(t, "run-3", got.Last.ID)
		assert.Equal(t, 4, got.Last.Summary.Accepted)
		assert.Empty(t, got.Error)
	})

	t.Run("includes the failure of the last run", func(t *testing.T) {
		t.Parallel()

		last := &curator.RunState{ID: "run-4", Failure: curator.Errorf(curator.EINVALID, "bad config")}
		srv := curchi.NewServer(":0", statusStub{last: last, runs: 1}, nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		var got curchi.Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "bad config", got.Error)
	})

	t.Run("routes metrics when a handler is given", func(t *testing.T) {
		t.Parallel()

		metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("curator_runs_total 1\n"))
		})
		srv := curchi.NewServer(":0", statusStub{}, metrics)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "curator_runs_total 1\n", rec.Body.String())
	})

	t.Run("leaves metrics unrouted without a handler", func(t *testing.T) {
		t.Parallel()

		srv := curchi.NewServer(":0", statusStub{}, nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
