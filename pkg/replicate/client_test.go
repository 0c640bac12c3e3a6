package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePredictionSendsVersionAndInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/predictions", r.URL.Path)
		assert.Equal(t, "Token r8_test", r.Header.Get("Authorization"))

		var body struct {
			Version string         `json:"version"`
			Input   map[string]any `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "google/veo-3", body.Version)
		assert.Equal(t, "rain on a tin roof", body.Input["prompt"])
		assert.Equal(t, float64(5), body.Input["duration"])
		assert.Equal(t, "16:9", body.Input["aspect_ratio"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pred_1","status":"starting"}`))
	}))
	defer srv.Close()

	c := NewClient("r8_test", srv.URL, time.Second)
	pred, err := c.CreatePrediction(context.Background(), "google/veo-3", map[string]any{
		"prompt":       "rain on a tin roof",
		"duration":     5,
		"aspect_ratio": "16:9",
	})
	require.NoError(t, err)
	assert.Equal(t, "pred_1", pred.ID)
	assert.Equal(t, StatusStarting, pred.Status)
	assert.False(t, pred.IsTerminal())
}

func TestCreatePredictionSurfacesProviderBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"invalid version"}`))
	}))
	defer srv.Close()

	_, err := NewClient("tok", srv.URL, time.Second).CreatePrediction(context.Background(), "bad", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid version")
}

func TestGetPredictionEscapesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predictions/..%2F..%2Fv1%2Faccount%3Fx=1", r.URL.EscapedPath())
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"id":"x","status":"processing"}`))
	}))
	defer srv.Close()

	_, err := NewClient("tok", srv.URL, time.Second).GetPrediction(context.Background(), "../../v1/account?x=1")
	require.NoError(t, err)
}

func TestWaitForPredictionPollsUntilTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/predictions/pred_9", r.URL.Path)
		if atomic.AddInt32(&calls, 1) < 3 {
			_, _ = w.Write([]byte(`{"id":"pred_9","status":"processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"pred_9","status":"succeeded","output":["https://cdn.example/frame.jpg"]}`))
	}))
	defer srv.Close()

	pred, err := NewClient("tok", srv.URL, time.Second).WaitForPrediction(context.Background(), "pred_9", time.Millisecond, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, pred.Status)
	assert.Equal(t, "https://cdn.example/frame.jpg", pred.OutputURL())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWaitForPredictionHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p","status":"starting"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient("tok", srv.URL, time.Second).WaitForPrediction(ctx, "p", 5*time.Millisecond, 0)
	assert.Error(t, err)
}

func TestOutputURLShapes(t *testing.T) {
	assert.Equal(t, "https://a", (&Prediction{Output: json.RawMessage(`"https://a"`)}).OutputURL())
	assert.Equal(t, "https://b", (&Prediction{Output: json.RawMessage(`["https://b","https://c"]`)}).OutputURL())
	assert.Equal(t, "", (&Prediction{Output: json.RawMessage(`[]`)}).OutputURL())
	assert.Equal(t, "", (&Prediction{}).OutputURL())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", (&Prediction{}).ErrorMessage())
	assert.Equal(t, "boom", (&Prediction{Error: "boom"}).ErrorMessage())
	assert.Equal(t, `{"code":1}`, (&Prediction{Error: map[string]any{"code": 1}}).ErrorMessage())
}
