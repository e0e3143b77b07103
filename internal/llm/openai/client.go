// Package openai implements llm.FieldExtractor over the OpenAI
// chat/completions API, with optional page-image attachments for
// vision-capable models.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/llm"
	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string // e.g. "gpt-4o"
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	RetryMax    int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: llm.NewHTTPClient(cfg.Timeout, cfg.RetryMax, logger),
		log:        logger,
	}
}

// ExtractFields implements llm.FieldExtractor.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (*llm.ExtractionResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	attachImages := req.UseVision && len(req.Images) > 0
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", common.ProviderOpenAI,
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"images", len(req.Images),
		"vision", attachImages,
	)

	prompt := llm.BuildExtractionPrompt(req.Text, req.Template, attachImages)

	var userContent any = prompt
	if attachImages {
		parts := []map[string]any{{"type": "text", "text": prompt}}
		images := req.Images
		if len(images) > llm.MaxImagesPerCall {
			images = images[:llm.MaxImagesPerCall]
		}
		for _, img := range images {
			parts = append(parts, map[string]any{
				"type": "image_url",
				"image_url": map[string]any{
					"url":    "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
					"detail": "high",
				},
			})
		}
		userContent = parts
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": userContent},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewProviderError(fmt.Sprintf("openai call failed (status %d)", status), err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, common.NewParseError("decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		return nil, common.NewParseError("no choices in openai response", nil)
	}

	fields, err := llm.ParseExtractionResponse([]byte(cc.Choices[0].Message.Content), req.Template, attachImages)
	if err != nil {
		c.log.Error("llm.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewParseError("parse openai extraction response", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &llm.ExtractionResult{
		Fields:        fields,
		Provider:      common.ProviderOpenAI,
		Model:         c.cfg.Model,
		Vision:        attachImages,
		SchemaVersion: schema.Version,
		Timestamp:     time.Now().UTC(),
	}, nil
}
