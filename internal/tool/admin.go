package tool

import (
	"context"
	"strings"

	"github.com/ppiankov/mediagate/internal/remote"
)

func (t *Tool) balance(ctx context.Context, c *call) Result {
	resp, err := t.deps.API.Balance(ctx)
	if err != nil || !resp.OK {
		return adminFailure(c, resp, err)
	}
	return jsonResult("Balance", resp.Body)
}

func (t *Tool) pricing(ctx context.Context, c *call) Result {
	resp, err := t.deps.API.Pricing(ctx)
	if err != nil || !resp.OK {
		return adminFailure(c, resp, err)
	}
	return jsonResult("Pricing", resp.Body)
}

func (t *Tool) transactions(ctx context.Context, c *call) Result {
	if c.Limit < 0 {
		return failureText("limit must not be negative")
	}
	resp, err := t.deps.API.Transactions(ctx, c.Limit)
	if err != nil || !resp.OK {
		return adminFailure(c, resp, err)
	}
	return jsonResult("Transactions", resp.Body)
}

func (t *Tool) pods(ctx context.Context, c *call) Result {
	resp, err := t.deps.API.Pods(ctx)
	if err != nil || !resp.OK {
		return adminFailure(c, resp, err)
	}
	return jsonResult("Pods", resp.Body)
}

// post forwards a social post. media_url may be left empty for text posts.
func (t *Tool) post(ctx context.Context, c *call) Result {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return failureText("text is required")
	}
	resp, err := t.deps.API.PostSocial(ctx, remote.SocialPost{
		Platform: strings.TrimSpace(c.Platform),
		Text:     text,
		MediaURL: strings.TrimSpace(c.MediaURL),
	})
	if err != nil || !resp.OK {
		return adminFailure(c, resp, err)
	}
	return jsonResult("Posted", resp.Body)
}
