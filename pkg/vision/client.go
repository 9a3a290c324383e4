package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultModel balances recognition quality and latency for food photos.
	DefaultModel = "gemini-2.0-flash"

	// Generative Language API endpoint template, model name interpolated.
	generateContentURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

	// Default timeout for API requests
	defaultTimeout = 30 * time.Second
)

// Client calls a vision model to turn food photos into nutrition text.
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

// Config configures the vision client.
type Config struct {
	// APIKey is required for authentication
	APIKey string `env:"VISION_API_KEY,required"`

	// Model specifies which generative model to use
	// Default: gemini-2.0-flash
	Model string `env:"VISION_MODEL" envDefault:"gemini-2.0-flash"`

	// HTTPClient allows custom HTTP client configuration
	// Default: http.Client with 30s timeout
	HTTPClient *http.Client
}

// NewClient creates a new vision client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: defaultTimeout,
		}
	}

	return &Client{
		apiKey: config.APIKey,
		model:  model,
		client: client,
	}, nil
}

// AnalyzeRequest describes one food photo analysis.
type AnalyzeRequest struct {
	// Image is the raw photo bytes.
	Image []byte
	// MimeType of the image, "image/jpeg" when empty.
	MimeType string
	// WeightGrams is the portion weight. Zero lets the model estimate it.
	WeightGrams int
	// MultiDish asks for a per-dish breakdown of a photo with several
	// plates. Gated by the multi_subject entitlement upstream.
	MultiDish bool
}

// AnalyzeFood sends the photo to the model and returns the analysis text
// in the fixed Calories/Proteins/Fats/Carbs format.
func (c *Client) AnalyzeFood(ctx context.Context, req AnalyzeRequest) (string, error) {
	if len(req.Image) == 0 {
		return "", ErrEmptyImage
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []part{
		{Text: foodPrompt(req.WeightGrams, req.MultiDish)},
		{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}},
	}
	return c.generate(ctx, parts)
}

// GenerateText runs a plain text prompt, used for nutrition tips.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	requestBody := generateRequest{
		Contents: []content{{Parts: parts}},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(generateContentURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", ErrRateLimitExceeded, string(body))
		}
		return "", fmt.Errorf("vision API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	for _, candidate := range response.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", ErrAnalysisFailed
}

func foodPrompt(weightGrams int, multiDish bool) string {
	var b bytes.Buffer
	b.WriteString("Analyze this food photo and identify the visible dishes and ingredients.\n")
	if multiDish {
		b.WriteString("The photo may contain several separate dishes. Break the analysis down per dish, then give combined totals.\n")
	}
	if weightGrams > 0 {
		fmt.Fprintf(&b, "Calculate nutrition for a portion of %d grams.\n", weightGrams)
	} else {
		b.WriteString("Estimate the portion weight from the photo and calculate nutrition for it.\n")
	}
	b.WriteString(`
Answer in exactly this format:

Dish: [detailed description of the visible food]
Calories: XXX
Proteins: XX
Fats: XX
Carbs: XX
Vitamins:
- Vitamin A: XX%
- Vitamin C: XX%
- Iron: XX%
- Calcium: XX%

List only vitamins and minerals with their percent of an adult daily
value. Do not include cholesterol, fiber or other compounds.`)
	return b.String()
}

// Generative Language API request/response types

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
