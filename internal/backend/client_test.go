package backend

import (
	"context"
	"coursegate/internal/config"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/"}).WithToken("tok-1")
}

func TestGetPurchaseDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/purchase/c-1", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"purchased":true,"expired":true,"expiryDate":"2020-01-01T00:00:00Z"}}`))
	})

	status, err := c.GetPurchase(context.Background(), "c-1")
	require.NoError(t, err)
	assert.True(t, status.Purchased)
	assert.True(t, status.Expired)
	require.NotNil(t, status.ExpiryDate)
}

func TestSuccessFalseBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"chapter locked"}`))
	})

	_, err := c.GetChapterURL(context.Background(), "intro")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "get_chapter_url", apiErr.Operation)
	assert.Equal(t, "chapter locked", apiErr.Message)
}

func TestNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Course not found"}`))
	})

	_, err := c.GetCourse(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Course not found")
}

func TestVideoURLAcceptsStringOrObject(t *testing.T) {
	bodies := []string{
		`{"success":true,"data":"https://cdn.example/v.m3u8?sig=1"}`,
		`{"success":true,"data":{"url":"https://cdn.example/v.m3u8?sig=1"}}`,
	}
	for _, body := range bodies {
		body := body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(body))
		})
		u, err := c.GetChapterURL(context.Background(), "intro")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/v.m3u8?sig=1", u)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":""}`))
	})
	_, err := c.GetChapterURL(context.Background(), "intro")
	assert.Error(t, err)
}

func TestUpdateProgressSendsBody(t *testing.T) {
	var got progressBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user-progress/update", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"data":true}`))
	})

	require.NoError(t, c.UpdateProgress(context.Background(), "ch-1", 42.5))
	assert.Equal(t, progressBody{ChapterID: "ch-1", WatchedTime: 42.5}, got)
}

func TestCourseProgressValidatedAtBoundary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"percentage":140}}`))
	})
	_, err := c.GetCourseProgress(context.Background(), "c-1")
	assert.Error(t, err)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"percentage":100,"completedChapters":["a","b"],"completedCount":2,"totalChapters":2}}`))
	})
	p, err := c.GetCourseProgress(context.Background(), "c-1")
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.True(t, p.HasCompleted("b"))
}

func TestTransportFailure(t *testing.T) {
	c := NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := c.CheckEnrollment(context.Background(), "c-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
}
