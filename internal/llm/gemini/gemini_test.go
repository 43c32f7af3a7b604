package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
)

func TestGenerate_SendsPromptAndParams(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "k-123", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  1. Hook one\n2. Hook two  "}]}}]}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "k-123", "gemini-pro", 5*time.Second)
	out, err := p.Generate(context.Background(), "write hooks", llm.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "1. Hook one\n2. Hook two", out)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "write hooks", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.9, got.GenerationConfig.Temperature)
	assert.Equal(t, 40, got.GenerationConfig.TopK)
	assert.Equal(t, 0.95, got.GenerationConfig.TopP)
	assert.Equal(t, 1024, got.GenerationConfig.MaxOutputTokens)
}

func TestGenerate_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"non-2xx":       {http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`},
		"no candidates": {http.StatusOK, `{"candidates":[]}`},
		"blank text":    {http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`},
		"bad json":      {http.StatusOK, `not json`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "k", "", time.Second).Generate(context.Background(), "p", llm.DefaultParams())
			assert.Error(t, err)
		})
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	_, err := New("http://127.0.0.1:1", "", "", time.Second).Generate(context.Background(), "p", llm.DefaultParams())
	assert.ErrorContains(t, err, "api key")
}
