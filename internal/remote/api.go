package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
)

// Asset is a generated or uploaded media file known to the remote service.
type Asset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}

// Job is a unit of generation work tracked by the remote service.
type Job struct {
	ID        string  `json:"job_id"`
	Status    string  `json:"status"`
	Kind      string  `json:"kind,omitempty"`
	Prompt    string  `json:"prompt,omitempty"`
	Assets    []Asset `json:"assets,omitempty"`
	Error     any     `json:"error,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Job statuses reported by the service.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Failed reports whether the job ended in failure.
func (j Job) Failed() bool {
	return j.Status == StatusFailed || j.Error != nil
}

// GenerateRequest is the body for synchronous and asynchronous generation.
type GenerateRequest struct {
	Prompt          string `json:"prompt"`
	Kind            string `json:"kind,omitempty"`
	Model           string `json:"model,omitempty"`
	NegativePrompt  string `json:"negative_prompt,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Seed            *int64 `json:"seed,omitempty"`
}

// UploadedAsset is the reply to an asset upload.
type UploadedAsset struct {
	ID  string `json:"asset_id"`
	URL string `json:"url"`
}

// SocialPost is forwarded to the service's social publishing endpoint.
type SocialPost struct {
	Platform string `json:"platform,omitempty"`
	Text     string `json:"text"`
	MediaURL string `json:"media_url,omitempty"`
}

// ErrInvalidID is returned before any network call for malformed identifiers.
var ErrInvalidID = errors.New("invalid identifier")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

func checkID(kind, id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s: %w", kind, ErrInvalidID)
	}
	return nil
}

// Generate runs a synchronous generation bounded by the generate timeout.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*Response, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    "/v1/generate",
		Body:    req,
		Timeout: c.generateTimeout,
	})
}

// SubmitJob queues an asynchronous generation.
func (c *Client) SubmitJob(ctx context.Context, req GenerateRequest) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/v1/jobs", Body: req})
}

// GetJob fetches one job.
func (c *Client) GetJob(ctx context.Context, id string) (*Response, error) {
	if err := checkID("job_id", id); err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/jobs/" + id})
}

// ListJobs lists recent jobs, optionally filtered by status.
func (c *Client) ListJobs(ctx context.Context, status string, limit int) (*Response, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/jobs", Query: q})
}

// UploadAsset sends file bytes to the service as base64 JSON.
func (c *Client) UploadAsset(ctx context.Context, filename, contentType string, data []byte) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/v1/assets",
		Body: map[string]string{
			"filename":     filename,
			"content_type": contentType,
			"data":         base64.StdEncoding.EncodeToString(data),
		},
		Timeout: c.generateTimeout,
	})
}

// GetAsset fetches asset metadata, including its download URL.
func (c *Client) GetAsset(ctx context.Context, id string) (*Response, error) {
	if err := checkID("asset_id", id); err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/assets/" + id})
}

// Balance returns the account token balance.
func (c *Client) Balance(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/account/balance"})
}

const pricingKey = "pricing"

// Pricing returns the price list. Successful replies are cached.
func (c *Client) Pricing(ctx context.Context) (*Response, error) {
	if c.pricing != nil {
		if v, ok := c.pricing.Get(pricingKey); ok {
			return v.(*Response), nil
		}
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/pricing"})
	if err != nil {
		return nil, err
	}
	if resp.OK && c.pricing != nil {
		c.pricing.SetDefault(pricingKey, resp)
	}
	return resp, nil
}

// Transactions lists recent billing transactions.
func (c *Client) Transactions(ctx context.Context, limit int) (*Response, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/account/transactions", Query: q})
}

// Pods returns worker pod and container status.
func (c *Client) Pods(ctx context.Context) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/v1/pods"})
}

// PostSocial forwards a post to the social publishing endpoint.
func (c *Client) PostSocial(ctx context.Context, post SocialPost) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/v1/social/posts", Body: post})
}
