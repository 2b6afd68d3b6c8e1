package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/chatvault"
	cvhttp "github.com/fwojciec/chatvault/http"
	"github.com/stretchr/testify/assert"
)

func testRequest() chatvault.SaveRequest {
	return chatvault.SaveRequest{
		Content:     "hello",
		Service:     "chatgpt",
		MessageType: chatvault.MessageSingle,
	}
}

func newTestClient(url string) *cvhttp.Client {
	c := cvhttp.NewClient(url)
	c.RetryDelays = []time.Duration{time.Millisecond}
	return c
}

func TestClient_Save(t *testing.T) {
	t.Parallel()

	t.Run("retries once after transient failure", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem})
		}))
		defer server.Close()

		out := newTestClient(server.URL).Save(context.Background(), testRequest())

		assert.True(t, out.Success)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("reports failure after retry is exhausted", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		out := newTestClient(server.URL).Save(context.Background(), testRequest())

		assert.False(t, out.Success)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, chatvault.UserMessage(chatvault.Errorf(chatvault.EUNAVAILABLE, "")), out.Message)
	})

	t.Run("does not retry rejected requests", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chatvault.SaveOutcome{Success: false, Error: "malformed"})
		}))
		defer server.Close()

		out := newTestClient(server.URL).Save(context.Background(), testRequest())

		assert.False(t, out.Success)
		assert.Equal(t, "malformed", out.Error)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("reports unreachable coordinator", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		out := newTestClient(url).Save(context.Background(), testRequest())

		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("abandons retry when context is cancelled", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := cvhttp.NewClient(server.URL)
		c.RetryDelays = []time.Duration{time.Hour}
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		out := c.Save(ctx, testRequest())

		assert.False(t, out.Success)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("sends gesture header", func(t *testing.T) {
		t.Parallel()

		var header string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Get(cvhttp.GestureHeader)
			_ = json.NewEncoder(w).Encode(chatvault.SaveOutcome{Success: true})
		}))
		defer server.Close()

		newTestClient(server.URL).Save(chatvault.WithUserGesture(context.Background()), testRequest())

		assert.Equal(t, "1", header)
	})
}

func TestDefaultRetryDelays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []time.Duration{500 * time.Millisecond}, cvhttp.DefaultRetryDelays())
}
