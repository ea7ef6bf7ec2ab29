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

func TestOpenAICollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"ok\":true}  "}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIOptions{APIKey: "key", BaseURL: srv.URL + "/", Model: "gpt-test", System: "be brief"})
	defer p.Close()

	out, err := Collect(context.Background(), p, "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestOpenAIStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIOptions{APIKey: "key", BaseURL: srv.URL})
	_, err := Collect(context.Background(), p, "hello")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.True(t, se.Temporary())
	assert.False(t, (&StatusError{StatusCode: 400}).Temporary())
}

func TestOpenAIErrorBodies(t *testing.T) {
	cases := map[string]string{
		"provider error": `{"error":{"message":"bad key","type":"auth"}}`,
		"no choices":     `{"choices":[]}`,
		"not json":       `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := Collect(context.Background(), NewOpenAI(OpenAIOptions{BaseURL: srv.URL}), "x")
			assert.Error(t, err)
		})
	}
}

func TestCollectEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer srv.Close()

	_, err := Collect(context.Background(), NewOpenAI(OpenAIOptions{BaseURL: srv.URL}), "x")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}
