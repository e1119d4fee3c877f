// Package ai talks to an OpenAI-compatible chat completions endpoint for
// plant identification, diagnosis, compatibility and chat.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/metrics"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable means the provider could not be reached or timed out,
	// answered with a 5xx, 408 or 429 status, or the breaker is open.
	ErrUnavailable = errors.New("ai provider unavailable")
	// ErrMalformedResponse means the provider answered but the content could
	// not be decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed ai response")
	// ErrRejected means the provider refused this particular request with a
	// 4xx status, for example an oversized image. It does not trip the breaker.
	ErrRejected      = errors.New("ai provider rejected the request")
	ErrNotConfigured = fmt.Errorf("%w: no api key or url", ErrUnavailable)
)

const maxResponseBytes = 4 << 20

type Options struct {
	APIKey          string
	APIURL          string
	Model           string
	VisionModel     string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	BreakerInterval time.Duration
	// RatePerSecond caps outbound calls; zero disables the limiter.
	RatePerSecond float64
	RateBurst     int
	HTTPClient    *http.Client
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		APIKey:          cfg.AIAPIKey,
		APIURL:          cfg.AIAPIURL,
		Model:           cfg.AIModel,
		VisionModel:     cfg.AIVisionModel,
		Timeout:         cfg.AITimeout,
		BreakerFailures: cfg.AIBreakerFailures,
		BreakerTimeout:  cfg.AIBreakerTimeout,
		BreakerInterval: cfg.AIBreakerInterval,
		RatePerSecond:   cfg.AIRatePerSecond,
		RateBurst:       cfg.AIRateBurst,
	}
}

type Client struct {
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.VisionModel == "" {
		opts.VisionModel = opts.Model
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{opts: opts, http: httpClient}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "ai",
		MaxRequests: 1,
		Interval:    opts.BreakerInterval,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		IsSuccessful: providerHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	if opts.RatePerSecond > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return c
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content interface{} `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type call struct {
	task     string
	model    string
	messages []chatMessage
	json     bool
	temp     float64
}

// complete runs one chat completion and returns the assistant content.
// No retries: a failed call fails the request that made it.
func (c *Client) complete(ctx context.Context, cl call) (content string, err error) {
	start := time.Now()
	defer func() {
		metrics.AILatency.WithLabelValues(cl.task).Observe(time.Since(start).Seconds())
		metrics.AIRequests.WithLabelValues(cl.task, outcome(err)).Inc()
	}()

	if c.opts.APIKey == "" || c.opts.APIURL == "" {
		return "", ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	body := chatRequest{Model: cl.model, Messages: cl.messages, Temperature: cl.temp}
	if cl.json {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	switch v := resp.Choices[0].Message.Content.(type) {
	case string:
		content = v
	case nil:
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		content = string(b)
	}
	return content, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case rejectedStatus(resp.StatusCode):
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
}

// rejectedStatus reports 4xx answers that blame the request, not the
// provider. 408 and 429 are load signals and still count as failures.
func rejectedStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return false
	}
	return code >= 400 && code < 500
}

// providerHealthy tells the breaker which errors say nothing about the
// provider: a caller that went away and a request the provider refused.
func providerHealthy(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrRejected)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	}
	return "error"
}
