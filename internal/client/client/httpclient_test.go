package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginThenSearchSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "seeker@example.com", body["email"])
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "a1", "refresh_token": "r1"})
	})
	mux.HandleFunc("GET /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "Riga", r.URL.Query().Get("city"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "2026-01-01T00:00:00Z", r.URL.Query().Get("from"))
		assert.False(t, r.URL.Query().Has("offset"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items":  []map[string]any{{"posting": map[string]any{"id": "j1", "title": "Go dev"}, "score": 0.5}},
			"offset": 0, "limit": 5,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", time.Second)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "seeker@example.com", "password1"))

	res, err := c.SearchJobs(ctx, models.SearchParams{
		Text: "golang", City: "Riga", Limit: 5,
		PostedFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "j1", res.Items[0].Job.ID)
	assert.Equal(t, 5, res.Limit)
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	var jobCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refresh_token"])
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "a2", "expires_at": time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("GET /api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		jobCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer a2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated", "reason": "token_expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": r.PathValue("id"), "title": "Go dev"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	c.setTokens("a1", "r1")

	j, err := c.GetJob(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", j.ID)
	assert.Equal(t, int32(2), jobCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())

	access, refresh := c.Tokens()
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r1", refresh)
}

func TestInvalidTokenIsNotRefreshed(t *testing.T) {
	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("GET /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated", "reason": "invalid_token"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	c.setTokens("bad", "r1")

	_, err := c.SearchJobs(context.Background(), models.SearchParams{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, refreshCalls.Load())
}

func TestRefreshRejectedMeansSessionExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated", "reason": "token_expired"})
	})
	mux.HandleFunc("GET /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated", "reason": "token_expired"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	c.setTokens("a1", "r1")

	_, err := c.SearchJobs(context.Background(), models.SearchParams{})
	assert.ErrorIs(t, err, ErrSessionExpired)

	c.Logout()
	_, err = c.SearchJobs(context.Background(), models.SearchParams{})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusGatewayTimeout, ErrTimeout},
		{http.StatusServiceUnavailable, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.code, map[string]string{"error": "x"})
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, time.Second)
			err := c.DeleteJob(context.Background(), "j1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateUpdateDeleteRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		var in models.JobInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, models.Job{ID: "new", Title: in.Title, Tier: in.Tier})
	})
	mux.HandleFunc("PUT /api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in models.JobInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusOK, models.Job{ID: r.PathValue("id"), Title: in.Title})
	})
	mux.HandleFunc("DELETE /api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	ctx := context.Background()

	j, err := c.CreateJob(ctx, models.JobInput{Title: "Go dev", Tier: "gold"})
	require.NoError(t, err)
	assert.Equal(t, "gold", j.Tier)

	j, err = c.UpdateJob(ctx, "new", models.JobInput{Title: "Senior Go dev"})
	require.NoError(t, err)
	assert.Equal(t, "Senior Go dev", j.Title)

	require.NoError(t, c.DeleteJob(ctx, "new"))
}

func TestServerDownIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}
