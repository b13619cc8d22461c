package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billaudit/internal/analyzer"
	"billaudit/internal/analyzer/openai"
	"billaudit/internal/config"
	"billaudit/internal/domain"
	"billaudit/internal/port"
)

func newTestAnalyzer(serverURL string, maxRetries int) *openai.Analyzer {
	cfg := &config.AnalyzerProviderConfig{
		Provider:    "groq",
		APIKey:      "test-key",
		BaseURL:     serverURL,
		MaxRetries:  maxRetries,
		TimeoutSecs: 5,
	}
	return openai.NewAnalyzer(cfg, analyzer.Options{MaxTextChars: 10})
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

func TestAnalyzer_Image(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", body["model"])
		assert.Equal(t, float64(1000), body["max_tokens"])

		msg := body["messages"].([]interface{})[0].(map[string]interface{})
		parts := msg["content"].([]interface{})
		require.Len(t, parts, 2)
		assert.Equal(t, analyzer.ImagePrompt, parts[0].(map[string]interface{})["text"])
		img := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
		assert.True(t, strings.HasPrefix(img["url"].(string), "data:image/png;base64,"))

		writeCompletion(w, "  Invoice #INV-1 from Acme Corp  ")
	}))
	defer server.Close()

	out, err := newTestAnalyzer(server.URL, 0).Analyze(context.Background(), port.AnalyzeInput{
		FileBytes:   []byte{0x89, 'P', 'N', 'G'},
		ContentType: "image/png",
		FileType:    domain.FileTypeImage,
	})

	require.NoError(t, err)
	assert.Equal(t, "Invoice #INV-1 from Acme Corp", out.Text)
	assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", out.ModelUsed)
}

func TestAnalyzer_TextIsTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.3-70b-versatile", body["model"])

		msg := body["messages"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "Analyze and summarize this document content:\n\n0123456789", msg["content"])

		writeCompletion(w, "A summary")
	}))
	defer server.Close()

	out, err := newTestAnalyzer(server.URL, 0).Analyze(context.Background(), port.AnalyzeInput{
		FileType:      domain.FileTypeText,
		ExtractedText: "0123456789abcdef",
	})

	require.NoError(t, err)
	assert.Equal(t, "A summary", out.Text)
}

func TestAnalyzer_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer server.Close()

	_, err := newTestAnalyzer(server.URL, 3).Analyze(context.Background(), port.AnalyzeInput{
		FileType:      domain.FileTypeText,
		ExtractedText: "text",
	})

	var rlErr *analyzer.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "groq", rlErr.Provider)
}

func TestAnalyzer_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream"}}`))
			return
		}
		writeCompletion(w, "recovered")
	}))
	defer server.Close()

	out, err := newTestAnalyzer(server.URL, 1).Analyze(context.Background(), port.AnalyzeInput{
		FileType:      domain.FileTypeText,
		ExtractedText: "text",
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", out.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAnalyzer_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer server.Close()

	_, err := newTestAnalyzer(server.URL, 3).Analyze(context.Background(), port.AnalyzeInput{
		FileType:      domain.FileTypeText,
		ExtractedText: "text",
	})

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAnalyzer_UnsupportedFileType(t *testing.T) {
	_, err := newTestAnalyzer("http://127.0.0.1:1", 0).Analyze(context.Background(), port.AnalyzeInput{})

	assert.Error(t, err)
}

func TestFactory_RequiresAPIKey(t *testing.T) {
	_, err := analyzer.NewAnalyzer(&config.AnalyzerProviderConfig{Provider: "groq"}, analyzer.Options{})
	assert.Error(t, err)

	a, err := analyzer.NewAnalyzer(&config.AnalyzerProviderConfig{Provider: "openai", APIKey: "k"}, analyzer.Options{})
	require.NoError(t, err)
	assert.NotNil(t, a)
}
