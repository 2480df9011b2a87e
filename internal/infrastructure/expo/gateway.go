package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/conference-api/internal/domain"
	"go.uber.org/zap"
)

// maxBatch is the most messages the Expo push API accepts per request.
const maxBatch = 100

const DefaultURL = "https://exp.host/--/api/v2/push/send"

type Gateway struct {
	url         string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

type Option func(*Gateway)

// WithHTTPClient replaces the default client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

func NewGateway(url, accessToken string, logger *zap.Logger, opts ...Option) *Gateway {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		url:         url,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      logger.Named("expo"),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details"`
}

type pushResponse struct {
	Data   []ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts the payloads to Expo in chunks. Rejected tickets are logged;
// the batch fails on a request-level error or when every ticket is rejected.
func (g *Gateway) Send(ctx context.Context, batch []domain.PushNotificationRequest) error {
	if len(batch) == 0 {
		return nil
	}
	accepted := 0
	for start := 0; start < len(batch); start += maxBatch {
		chunk := batch[start:min(start+maxBatch, len(batch))]
		tickets, err := g.post(ctx, chunk)
		if err != nil {
			return err
		}
		for i, t := range tickets {
			if t.Status == "ok" {
				accepted++
				continue
			}
			deviceID := ""
			if i < len(chunk) {
				deviceID = chunk[i].DeviceID
			}
			g.logger.Warn("expo ticket rejected",
				zap.String("device_id", deviceID),
				zap.String("error", t.Details.Error),
				zap.String("message", t.Message),
			)
		}
	}
	if accepted == 0 {
		return fmt.Errorf("expo: all %d tickets rejected", len(batch))
	}
	return nil
}

func (g *Gateway) post(ctx context.Context, chunk []domain.PushNotificationRequest) ([]ticket, error) {
	payloads := make([]domain.PushPayload, len(chunk))
	for i, r := range chunk {
		payloads[i] = r.Payload
	}
	body, err := json.Marshal(payloads)
	if err != nil {
		return nil, fmt.Errorf("marshal expo payloads: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read expo response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("expo push request: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	var out pushResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode expo response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("expo push request: %s: %s", out.Errors[0].Code, out.Errors[0].Message)
	}
	return out.Data, nil
}
