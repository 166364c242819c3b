package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TextExtractor turns screenshot bytes into raw text. Implementations wrap
// an external vision API; tests substitute a fake.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// VisionClient calls a Google Vision compatible text-detection endpoint.
type VisionClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewVisionClient constructs a client for the given endpoint.
func NewVisionClient(endpoint, apiKey string, timeout time.Duration) *VisionClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VisionClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type visionRequest struct {
	Requests []struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []struct {
			Type string `json:"type"`
		} `json:"features"`
	} `json:"requests"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// ExtractText sends the image for TEXT_DETECTION and returns the full text.
func (c *VisionClient) ExtractText(ctx context.Context, image []byte) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("vision endpoint not configured")
	}

	var payload visionRequest
	payload.Requests = make([]struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []struct {
			Type string `json:"type"`
		} `json:"features"`
	}, 1)
	payload.Requests[0].Image.Content = base64.StdEncoding.EncodeToString(image)
	payload.Requests[0].Features = []struct {
		Type string `json:"type"`
	}{{Type: "TEXT_DETECTION"}}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	url := c.endpoint
	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url = url + sep + "key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call vision api: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read vision response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision api status %d", resp.StatusCode)
	}

	var decoded visionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode vision response: %w", err)
	}
	if len(decoded.Responses) == 0 {
		return "", fmt.Errorf("empty vision response")
	}
	if decoded.Responses[0].Error != nil {
		return "", fmt.Errorf("vision api error: %s", decoded.Responses[0].Error.Message)
	}
	return decoded.Responses[0].FullTextAnnotation.Text, nil
}
