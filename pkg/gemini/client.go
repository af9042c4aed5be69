package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/logger"
)

const (
	defaultBaseURL             = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel               = "gemini-2.5-flash"
	defaultTimeout             = 60 * time.Second
	generationTemperature      = 0.2
	generationMaxOutputTokens  = 10000
	responseBodyReadLimit      = int64(1024)
	harmCategoryDangerous      = "HARM_CATEGORY_DANGEROUS_CONTENT"
	harmThresholdBlockLowAbove = "BLOCK_LOW_AND_ABOVE"
)

var errAPIKeyRequired = errors.New("gemini api key is required")

// Client wraps the Gemini generateContent API used for label analysis.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured generation base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithModel overrides the generation model.
func WithModel(model string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(model)
		if trimmed != "" {
			c.model = trimmed
		}
	}
}

// WithTimeout bounds the upstream call. The provider call is attempted
// exactly once, so the timeout is the only cap on a slow generation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger attaches the structured logger used for non-fatal warnings.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// NewClient builds the Gemini client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Model reports the generation model the client targets.
func (c *Client) Model() string {
	return c.model
}

// analysisPrompt is the fixed instruction sent with every label image.
const analysisPrompt = `Analyze the ingredient list from this product image and return structured information.

Extract ALL ingredients you can identify and for each one provide:
1. Name (standardized name)
2. E-number if applicable
3. Category (Preservative, Color, Emulsifier, Sweetener, etc.)
4. Purpose (what it does in the product)
5. Simple description (what it is)
6. Alternative names (common aliases)
7. Origin (Natural, Synthetic, or Both)
8. General safety note (if known)

IMPORTANT: Return ONLY valid JSON with this exact structure:
{
  "scanId": "generate-a-random-uuid",
  "ingredients": [
    {
      "name": "ingredient name",
      "eNumber": "E100 or null",
      "category": "category",
      "purpose": "what it does",
      "description": "simple description",
      "alternativeNames": ["alias1", "alias2"],
      "origin": "Natural/Synthetic/Both",
      "safetyNote": "general information"
    }
  ],
  "summary": "brief overall summary"
}

Be factual and objective. No medical claims.`

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
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

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Candidates []struct {
		FinishReason string `json:"finishReason"`
		Content      struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends one label image to the generation endpoint and parses the
// structured result out of the returned text. The call is stateless and safe
// for concurrent use; failures are never retried.
func (c *Client) Analyze(ctx context.Context, imageBytes []byte, mimeType string) (*AnalysisResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeAnalysis, "gemini client not configured")
	}
	if len(imageBytes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageBytes),
				}},
				{Text: analysisPrompt},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:      generationTemperature,
			MaxOutputTokens:  generationMaxOutputTokens,
			ResponseMimeType: "application/json",
		},
		SafetySettings: []safetySetting{{
			Category:  harmCategoryDangerous,
			Threshold: harmThresholdBlockLowAbove,
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "marshal generation request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(c.baseURL, "/"), c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "build generation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "execute generation request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "generation request failed")
	}

	var apiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "decode generation response")
	}

	return c.parseResponse(ctx, apiResp)
}

func (c *Client) parseResponse(ctx context.Context, apiResp generateResponse) (*AnalysisResult, error) {
	if reason := apiResp.PromptFeedback.BlockReason; reason != "" {
		return nil, pkgerrors.New(pkgerrors.CodeAnalysis, fmt.Sprintf("prompt blocked: %s", reason))
	}

	if len(apiResp.Candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeAnalysis, "no candidates in generation response")
	}

	candidate := apiResp.Candidates[0]
	if candidate.FinishReason != "STOP" && c.logg != nil {
		ctx = c.logg.WithField(ctx, "finish_reason", candidate.FinishReason)
		c.logg.Warn(ctx, "generation finished abnormally")
	}

	if len(candidate.Content.Parts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeAnalysis, "no content parts in generation response")
	}

	text := stripCodeFences(candidate.Content.Parts[0].Text)

	var result AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysis, err, "parse analysis payload")
	}

	if strings.TrimSpace(result.ScanID) == "" {
		result.ScanID = uuid.NewString()
	}

	return &result, nil
}

// stripCodeFences removes the markdown fence markers the model sometimes
// wraps around its JSON output despite the response mime type.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
