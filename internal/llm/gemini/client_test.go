package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverReplying(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		reply := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	}))
}

func clientFor(srv *httptest.Server) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestDetectCurrency(t *testing.T) {
	srv := serverReplying(t, "cny\n")
	defer srv.Close()

	code, err := clientFor(srv).DetectCurrency(context.Background(), "счет на оплату")
	require.NoError(t, err)
	assert.Equal(t, "CNY", code)
}

func TestDetectCurrencyRejectsChatter(t *testing.T) {
	srv := serverReplying(t, "The currency appears to be CNY.")
	defer srv.Close()

	code, err := clientFor(srv).DetectCurrency(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)
}

func TestDetectSender(t *testing.T) {
	srv := serverReplying(t, " Xinjiang Xindudu Co \n")
	defer srv.Close()

	name, err := clientFor(srv).DetectSender(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "XINJIANG XINDUDU CO", name)
}

func TestDetectSenderEmptyReply(t *testing.T) {
	srv := serverReplying(t, "  \n")
	defer srv.Close()

	name, err := clientFor(srv).DetectSender(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "Не опознан", name)
}

func TestGenerateFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	code, err := clientFor(srv).DetectCurrency(context.Background(), "doc")
	require.Error(t, err)
	// the static fallback still comes back alongside the error
	assert.Equal(t, "USD", code)
}

func TestGenerateFailsOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	_, err := clientFor(srv).DetectSender(context.Background(), "doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestConfigDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta", c.cfg.BaseURL)
	assert.Equal(t, "gemini-2.0-flash-lite", c.cfg.Model)
	assert.NotZero(t, c.cfg.Timeout)
}
