// Package lingua talks to the third-party language service behind the
// detect-and-translate and summarize-conversation endpoints.
package lingua

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fathima-sithara/session-broker/internal/config"
	"github.com/fathima-sithara/session-broker/internal/httpclient"
)

type Client struct {
	http *httpclient.Client
	cfg  config.UpstreamConfig
	log  *zap.SugaredLogger
}

func New(hc *httpclient.Client, cfg config.UpstreamConfig, log *zap.SugaredLogger) *Client {
	return &Client{http: hc, cfg: cfg, log: log}
}

type detectResponse struct {
	Data struct {
		Detections [][]struct {
			Language   string  `json:"language"`
			Confidence float64 `json:"confidence"`
		} `json:"detections"`
	} `json:"data"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Detect returns the language code the upstream detects for text.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	body, _ := json.Marshal(map[string]string{"q": text})
	resp, err := c.http.PostJSON(ctx, c.cfg.DetectURL, body, c.header())
	if err != nil {
		return "", fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("detect: upstream status %d", resp.StatusCode)
	}
	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("detect: decode response: %w", err)
	}
	if len(out.Data.Detections) == 0 || len(out.Data.Detections[0]) == 0 {
		return "", fmt.Errorf("detect: response missing detections")
	}
	return out.Data.Detections[0][0].Language, nil
}

// Translate returns text translated into target.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	body, _ := json.Marshal(map[string]string{"q": text, "target": target})
	resp, err := c.http.PostJSON(ctx, c.cfg.TranslateURL, body, c.header())
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: upstream status %d", resp.StatusCode)
	}
	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(out.Data.Translations) == 0 {
		return "", fmt.Errorf("translate: response missing translations")
	}
	return out.Data.Translations[0].TranslatedText, nil
}

// Summarize condenses a conversation transcript. This is the one call that
// rides the rate-limit retry path: 429s are retried with backoff before the
// failure is surfaced.
func (c *Client) Summarize(ctx context.Context, conversation string) (string, error) {
	body, _ := json.Marshal(map[string]string{"text": conversation})
	resp, err := c.http.PostJSONRetry(ctx, c.cfg.SummarizeURL, body, c.header())
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarize: upstream status %d", resp.StatusCode)
	}
	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("summarize: decode response: %w", err)
	}
	if out.Summary == "" {
		return "", fmt.Errorf("summarize: response missing summary")
	}
	return out.Summary, nil
}

func (c *Client) header() http.Header {
	h := http.Header{}
	if c.cfg.APIKey != "" {
		h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return h
}
