package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adityakhanna/vouched/internal/embed"
)

// AnnotationEmbedding implements embed.Generator.
func (c *Client) AnnotationEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.embedText(ctx, "annotation", text)
}

// RecommendationEmbedding implements embed.Generator.
func (c *Client) RecommendationEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.embedText(ctx, "recommendation", text)
}

func (c *Client) embedText(ctx context.Context, kind, text string) ([]float32, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("embed.request.start",
		"req_id", rid,
		"kind", kind,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	body := map[string]any{
		"model": c.cfg.Model,
		"input": text,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/embeddings"
	raw, _, err := embed.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("embed.request.http_error",
			"req_id", rid, "kind", kind, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var resp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := decodeJSON(raw, &resp); err != nil {
		c.logger.Error("embed.request.decode_error",
			"req_id", rid, "kind", kind, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		c.logger.Error("embed.request.empty_response",
			"req_id", rid, "kind", kind,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("no embedding in response")
	}

	c.logger.Info("embed.request.ok",
		"req_id", rid,
		"kind", kind,
		"dimensions", len(resp.Data[0].Embedding),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp.Data[0].Embedding, nil
}
