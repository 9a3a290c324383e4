package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nutrisnap/nutrisnap/pkg/logger"
)

// Config holds OAuth configuration for Google Calendar sync.
type Config struct {
	ClientID     string   `env:"GCAL_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GCAL_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GCAL_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GCAL_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/calendar"`
}

// eventsURL is the primary-calendar event insertion endpoint.
const eventsURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

// Service connects user accounts to Google Calendar and logs meals as
// calendar events.
type Service struct {
	conf       *oauth2.Config
	tokens     TokenStore
	httpClient *http.Client
	now        func() time.Time
	log        *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithHTTPClient overrides the HTTP client used for event calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithNowFunc overrides the time source, primarily for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a calendar Service.
func NewService(cfg Config, tokens TokenStore, opts ...Option) (*Service, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingClientID
	}
	if tokens == nil {
		panic("calendar: token store is required")
	}
	s := &Service{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AuthURL builds the authorization URL with the given state token.
// Offline access is requested so refresh tokens keep the sync alive.
func (s *Service) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Connect exchanges the authorization code and stores the user's token.
func (s *Service) Connect(ctx context.Context, userID int64, code string) error {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return ErrInvalidCode
	}
	if err := s.tokens.Save(ctx, userID, tok); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "calendar connected",
		logger.Component("calendar"),
		logger.UserID(userID))
	return nil
}

// Connected reports whether the user has a stored calendar token.
func (s *Service) Connected(ctx context.Context, userID int64) bool {
	_, err := s.tokens.Get(ctx, userID)
	return err == nil
}

// Disconnect drops the user's stored token.
func (s *Service) Disconnect(ctx context.Context, userID int64) error {
	return s.tokens.Delete(ctx, userID)
}

type calendarEvent struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Start       eventTime     `json:"start"`
	End         eventTime     `json:"end"`
	Reminders   eventReminder `json:"reminders"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventReminder struct {
	UseDefault bool     `json:"useDefault"`
	Overrides  []string `json:"overrides"`
}

// CreateMealEvent inserts a zero-length "Meal" event at the current time
// on the user's primary calendar, with the analysis text as description.
// Tokens are refreshed transparently and persisted when they rotate.
func (s *Service) CreateMealEvent(ctx context.Context, userID int64, description string) error {
	stored, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return ErrNotConnected
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	fresh, err := s.conf.TokenSource(ctx, stored).Token()
	if err != nil {
		return ErrNotConnected
	}
	if fresh.AccessToken != stored.AccessToken {
		if err := s.tokens.Save(ctx, userID, fresh); err != nil {
			s.log.WarnContext(ctx, "failed to persist refreshed calendar token",
				logger.Component("calendar"),
				logger.UserID(userID),
				logger.Error(err))
		}
	}

	now := s.now().UTC().Format(time.RFC3339)
	event := calendarEvent{
		Summary:     "Meal",
		Description: description,
		Start:       eventTime{DateTime: now, TimeZone: "UTC"},
		End:         eventTime{DateTime: now, TimeZone: "UTC"},
		Reminders:   eventReminder{UseDefault: false, Overrides: []string{}},
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, eventsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	fresh.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEventFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrEventFailed, resp.StatusCode, string(respBody))
	}

	s.log.InfoContext(ctx, "meal event created",
		logger.Component("calendar"),
		logger.UserID(userID))
	return nil
}
