// Package anthropic implements llm.FieldExtractor over the Anthropic
// messages API, with optional base64 page-image attachments.
package anthropic

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

const apiVersion = "2023-06-01"

// Config for the Anthropic client.
type Config struct {
	APIKey      string
	BaseURL     string // default https://api.anthropic.com/v1
	Model       string // e.g. "claude-sonnet-4-20250514"
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
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
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
		"provider", common.ProviderAnthropic,
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"images", len(req.Images),
		"vision", attachImages,
	)

	prompt := llm.BuildExtractionPrompt(req.Text, req.Template, attachImages)

	// Anthropic expects image blocks before the text block.
	var content []map[string]any
	if attachImages {
		images := req.Images
		if len(images) > llm.MaxImagesPerCall {
			images = images[:llm.MaxImagesPerCall]
		}
		for _, img := range images {
			content = append(content, map[string]any{
				"type": "image",
				"source": map[string]any{
					"type":       "base64",
					"media_type": "image/png",
					"data":       base64.StdEncoding.EncodeToString(img),
				},
			})
		}
	}
	content = append(content, map[string]any{"type": "text", "text": prompt})

	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"system":      llm.SystemPrompt,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}

	raw, status, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewProviderError(fmt.Sprintf("anthropic call failed (status %d)", status), err)
	}

	var mr struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		return nil, common.NewParseError("decode anthropic response", err)
	}
	var text string
	for _, block := range mr.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, common.NewParseError("no text block in anthropic response", nil)
	}

	fields, err := llm.ParseExtractionResponse([]byte(text), req.Template, attachImages)
	if err != nil {
		c.log.Error("llm.extract.parse_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.NewParseError("parse anthropic extraction response", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &llm.ExtractionResult{
		Fields:        fields,
		Provider:      common.ProviderAnthropic,
		Model:         c.cfg.Model,
		Vision:        attachImages,
		SchemaVersion: schema.Version,
		Timestamp:     time.Now().UTC(),
	}, nil
}
