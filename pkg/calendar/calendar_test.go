package calendar_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/nutrisnap/nutrisnap/pkg/calendar"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func validConfig() calendar.Config {
	return calendar.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://bot.example/oauth/callback",
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
	}
}

func freshToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: "token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("requires oauth credentials", func(t *testing.T) {
		t.Parallel()

		_, err := calendar.NewService(calendar.Config{}, calendar.NewMemoryTokenStore())
		assert.ErrorIs(t, err, calendar.ErrMissingClientID)
	})

	t.Run("auth url carries offline access", func(t *testing.T) {
		t.Parallel()

		svc, err := calendar.NewService(validConfig(), calendar.NewMemoryTokenStore())
		require.NoError(t, err)
		url := svc.AuthURL("state-123")
		assert.Contains(t, url, "state=state-123")
		assert.Contains(t, url, "access_type=offline")
	})
}

func TestService_CreateMealEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	t.Run("posts the event with auth header", func(t *testing.T) {
		t.Parallel()

		var captured *http.Request
		var capturedBody []byte
		client := &http.Client{
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				captured = r
				capturedBody, _ = io.ReadAll(r.Body)
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader(`{"id":"evt"}`)),
					Header:     make(http.Header),
				}, nil
			}),
		}

		tokens := calendar.NewMemoryTokenStore()
		require.NoError(t, tokens.Save(ctx, 42, freshToken()))

		svc, err := calendar.NewService(validConfig(), tokens,
			calendar.WithHTTPClient(client),
			calendar.WithNowFunc(func() time.Time { return now }))
		require.NoError(t, err)

		require.NoError(t, svc.CreateMealEvent(ctx, 42, "Calories: 650"))

		require.NotNil(t, captured)
		assert.Equal(t, "Bearer token", captured.Header.Get("Authorization"))

		var event struct {
			Summary     string `json:"summary"`
			Description string `json:"description"`
			Start       struct {
				DateTime string `json:"dateTime"`
			} `json:"start"`
		}
		require.NoError(t, json.Unmarshal(capturedBody, &event))
		assert.Equal(t, "Meal", event.Summary)
		assert.Equal(t, "Calories: 650", event.Description)
		assert.Equal(t, "2025-03-10T12:30:00Z", event.Start.DateTime)
	})

	t.Run("unconnected user", func(t *testing.T) {
		t.Parallel()

		svc, err := calendar.NewService(validConfig(), calendar.NewMemoryTokenStore())
		require.NoError(t, err)
		err = svc.CreateMealEvent(ctx, 42, "x")
		assert.ErrorIs(t, err, calendar.ErrNotConnected)
	})

	t.Run("api failure surfaces", func(t *testing.T) {
		t.Parallel()

		client := &http.Client{
			Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusForbidden,
					Body:       io.NopCloser(strings.NewReader(`{"error":"denied"}`)),
					Header:     make(http.Header),
				}, nil
			}),
		}

		tokens := calendar.NewMemoryTokenStore()
		require.NoError(t, tokens.Save(ctx, 42, freshToken()))

		svc, err := calendar.NewService(validConfig(), tokens, calendar.WithHTTPClient(client))
		require.NoError(t, err)
		err = svc.CreateMealEvent(ctx, 42, "x")
		assert.ErrorIs(t, err, calendar.ErrEventFailed)
	})
}

func TestService_ConnectedDisconnect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := calendar.NewMemoryTokenStore()
	svc, err := calendar.NewService(validConfig(), tokens)
	require.NoError(t, err)

	assert.False(t, svc.Connected(ctx, 42))
	require.NoError(t, tokens.Save(ctx, 42, freshToken()))
	assert.True(t, svc.Connected(ctx, 42))
	require.NoError(t, svc.Disconnect(ctx, 42))
	assert.False(t, svc.Connected(ctx, 42))
}
