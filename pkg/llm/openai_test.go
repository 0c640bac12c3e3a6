package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIServiceComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float32 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-3.5-turbo", body.Model)
		assert.Equal(t, 2000, body.MaxTokens)
		assert.InDelta(t, 0.9, body.Temperature, 0.001)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "rain in a cabin", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  [ ]  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	svc := NewOpenAIService("sk-test", "gpt-3.5-turbo", srv.URL+"/v1")
	out, err := svc.Complete(context.Background(), ChatRequest{
		System:      "be helpful",
		User:        "rain in a cabin",
		MaxTokens:   2000,
		Temperature: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, "[ ]", out)
}

func TestOpenAIServiceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	svc := NewOpenAIService("sk-test", "", srv.URL+"/v1")
	_, err := svc.Complete(context.Background(), ChatRequest{System: "s", User: "u"})
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Detail, "quota exceeded")
}

func TestOpenAIServiceEmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-2","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`))
	}))
	defer srv.Close()

	svc := NewOpenAIService("sk-test", "", srv.URL+"/v1")
	_, err := svc.Complete(context.Background(), ChatRequest{System: "s", User: "u"})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
