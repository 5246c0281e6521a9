package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/resilience"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	codeStorageUnavailable = "STORAGE_UNAVAILABLE"
	codeStorageRejected    = "STORAGE_REJECTED"
	codeCircuitOpen        = "STORAGE_CIRCUIT_OPEN"
)

// SupabaseConfig configures the storage REST client.
type SupabaseConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// RateLimit is the steady number of calls per second; zero disables it.
	RateLimit float64
	RateBurst int
	Breaker   resilience.Config
}

// SupabaseStore talks to a Supabase-compatible storage API.
type SupabaseStore struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

// NewSupabaseStore builds a client with retries, a rate limit and a circuit
// breaker around every call.
func NewSupabaseStore(cfg SupabaseConfig, log *logger.Logger) (*SupabaseStore, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("storage base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid storage base URL: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = log.With("component", "storage")
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "storage"
	}
	breakerCfg.IsFailure = func(err error) bool {
		return apperrors.GetErrorCode(err) == codeStorageUnavailable
	}

	return &SupabaseStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		limiter: limiter,
		breaker: resilience.NewCircuitBreaker(breakerCfg, log),
		log:     log,
	}, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (s *SupabaseStore) Breaker() *resilience.CircuitBreaker {
	return s.breaker
}

func (s *SupabaseStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = DetectContentType(data)
	}
	_, err := s.do(ctx, http.MethodPost, s.objectURL(bucket, path), data, map[string]string{
		"Content-Type": contentType,
		"x-upsert":     "true",
	})
	return err
}

func (s *SupabaseStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	return s.do(ctx, http.MethodGet, s.objectURL(bucket, path), nil, nil)
}

// Ping lists buckets, which needs a valid key and a live service.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, s.baseURL+"/storage/v1/bucket", nil, nil)
	return err
}

func (s *SupabaseStore) objectURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(bucket), strings.Join(segments, "/"))
}

func (s *SupabaseStore) do(ctx context.Context, method, target string, body []byte, headers map[string]string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewBackendUnavailableError(codeStorageUnavailable, "storage call throttled", err)
	}

	var out []byte
	err := s.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var rawBody interface{}
		if body != nil {
			rawBody = body
		}
		req, err := retryablehttp.NewRequestWithContext(ctx, method, target, rawBody)
		if err != nil {
			return apperrors.NewInternalError("STORAGE_REQUEST", "building storage request", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("apikey", s.apiKey)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return apperrors.NewBackendUnavailableError(codeStorageUnavailable, "storage request failed", err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return apperrors.NewBackendUnavailableError(codeStorageUnavailable, "reading storage response", err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			out = payload
			return nil
		}
		return statusError(resp.StatusCode, payload)
	})

	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, apperrors.NewBackendUnavailableError(codeCircuitOpen, "storage circuit open", err)
	}
	if err != nil {
		s.log.Warn("storage call failed", "method", method, "url", target, "error", err.Error())
		return nil, err
	}
	return out, nil
}

// storageErrorBody is the JSON error envelope of the storage API. Missing
// objects may arrive as HTTP 400 with statusCode "404" in the body.
type storageErrorBody struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func statusError(status int, payload []byte) error {
	var body storageErrorBody
	_ = json.Unmarshal(payload, &body)

	message := body.Message
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusNotFound || body.StatusCode == "404" || body.Error == "not_found":
		return apperrors.NewNotFoundError("ASSET_NOT_FOUND", "asset not found in storage")
	case status >= 500 || status == http.StatusTooManyRequests:
		return apperrors.NewBackendUnavailableError(codeStorageUnavailable,
			fmt.Sprintf("storage returned %d: %s", status, message), nil)
	default:
		return apperrors.NewBackendUnavailableError(codeStorageRejected,
			fmt.Sprintf("storage rejected request with %d: %s", status, message), nil)
	}
}
