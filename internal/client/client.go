package client

import (
	"context"
	"fmt"

	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// errorBody is the JSON error envelope returned by the dashboard API
type errorBody struct {
	Message string `json:"message"`
}

// newRestyClient builds the shared HTTP client. The bearer token is bound
// here once; nothing reads credentials after construction.
func newRestyClient(cfg config.APIConfig) *resty.Client {
	rl := ratelimit.New(cfg.MaxRequestsPerSecond)

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout()).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	} else {
		log.Warn("⚠️ No API token configured, requests will be sent unauthenticated")
	}

	client.AddRequestMiddleware(func(_ *resty.Client, _ *resty.Request) error {
		rl.Take()
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		log.Debugf("%s %s -> %d (%v)", resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Duration())
		return nil
	})

	return client
}

// execute sends req and classifies the outcome into the domain error taxonomy:
// *domain.APIError for non-success statuses, domain.ErrNetwork for transport
// failures.
func execute(ctx context.Context, req *resty.Request, method, url string) (*resty.Response, error) {
	var body errorBody

	resp, err := req.
		SetContext(ctx).
		SetError(&body).
		Execute(method, url)

	if resp != nil && resp.RawResponse != nil && !resp.IsSuccess() {
		return resp, &domain.APIError{
			StatusCode: resp.StatusCode(),
			Message:    body.Message,
		}
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		if resp != nil && resp.RawResponse != nil {
			return nil, fmt.Errorf("failed to decode response of %s %s: %w", method, url, err)
		}
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, url, err)
	}

	return resp, nil
}
