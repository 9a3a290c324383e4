package vision_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisnap/nutrisnap/pkg/vision"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func stubClient(t *testing.T, status int, body string, capture *http.Request) *http.Client {
	t.Helper()
	return &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if capture != nil {
				*capture = *r
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()

		_, err := vision.NewClient(vision.Config{})
		assert.ErrorIs(t, err, vision.ErrAPIKeyRequired)
	})

	t.Run("defaults model", func(t *testing.T) {
		t.Parallel()

		client, err := vision.NewClient(vision.Config{APIKey: "key"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_AnalyzeFood(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns the model text", func(t *testing.T) {
		t.Parallel()

		var captured http.Request
		client, err := vision.NewClient(vision.Config{
			APIKey:     "key",
			HTTPClient: stubClient(t, http.StatusOK, candidateResponse("Calories: 650"), &captured),
		})
		require.NoError(t, err)

		text, err := client.AnalyzeFood(ctx, vision.AnalyzeRequest{
			Image:       []byte{0xFF, 0xD8},
			WeightGrams: 250,
		})
		require.NoError(t, err)
		assert.Equal(t, "Calories: 650", text)
		assert.Equal(t, "key", captured.Header.Get("X-goog-api-key"))
		assert.Contains(t, captured.URL.String(), "gemini-2.0-flash")
	})

	t.Run("rejects empty image", func(t *testing.T) {
		t.Parallel()

		client, err := vision.NewClient(vision.Config{APIKey: "key"})
		require.NoError(t, err)
		_, err = client.AnalyzeFood(ctx, vision.AnalyzeRequest{})
		assert.ErrorIs(t, err, vision.ErrEmptyImage)
	})

	t.Run("surfaces rate limits", func(t *testing.T) {
		t.Parallel()

		client, err := vision.NewClient(vision.Config{
			APIKey:     "key",
			HTTPClient: stubClient(t, http.StatusTooManyRequests, `{"error":"slow down"}`, nil),
		})
		require.NoError(t, err)
		_, err = client.AnalyzeFood(ctx, vision.AnalyzeRequest{Image: []byte{1}})
		assert.ErrorIs(t, err, vision.ErrRateLimitExceeded)
	})

	t.Run("no candidates is a failure", func(t *testing.T) {
		t.Parallel()

		client, err := vision.NewClient(vision.Config{
			APIKey:     "key",
			HTTPClient: stubClient(t, http.StatusOK, `{"candidates":[]}`, nil),
		})
		require.NoError(t, err)
		_, err = client.AnalyzeFood(ctx, vision.AnalyzeRequest{Image: []byte{1}})
		assert.ErrorIs(t, err, vision.ErrAnalysisFailed)
	})
}

func TestClient_GenerateText(t *testing.T) {
	t.Parallel()

	client, err := vision.NewClient(vision.Config{
		APIKey:     "key",
		HTTPClient: stubClient(t, http.StatusOK, candidateResponse("eat more greens"), nil),
	})
	require.NoError(t, err)

	text, err := client.GenerateText(context.Background(), "one tip please")
	require.NoError(t, err)
	assert.Equal(t, "eat more greens", text)
}

// Guard that multi dish requests actually change the prompt.
func TestClient_MultiDishPrompt(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	client, err := vision.NewClient(vision.Config{
		APIKey: "key",
		HTTPClient: &http.Client{
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				capturedBody, _ = io.ReadAll(r.Body)
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader(candidateResponse("ok"))),
					Header:     make(http.Header),
				}, nil
			}),
		},
	})
	require.NoError(t, err)

	_, err = client.AnalyzeFood(context.Background(), vision.AnalyzeRequest{
		Image:     []byte{1},
		MultiDish: true,
	})
	require.NoError(t, err)
	assert.True(t, bytes.Contains(capturedBody, []byte("per dish")))
}
