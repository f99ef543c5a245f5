// Package tool implements the single mediagate tool: one action name plus a
// flat parameter set, forwarded to the remote generation API. Local checks
// (required parameters, path allowlist) always run before any network call.
package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/mediagate/internal/asset"
	"github.com/ppiankov/mediagate/internal/filehost"
	"github.com/ppiankov/mediagate/internal/gallery"
	"github.com/ppiankov/mediagate/internal/logging"
	"github.com/ppiankov/mediagate/internal/pathguard"
	"github.com/ppiankov/mediagate/internal/remote"
	"github.com/ppiankov/mediagate/internal/sanitize"
)

// Name is the tool name registered with the host runtime.
const Name = "mediagate"

// Deps are the collaborators a Tool needs. Gallery and FileHost are optional.
type Deps struct {
	API        *remote.Client
	Guard      *pathguard.Guard
	Downloader *asset.Downloader
	Gallery    *gallery.Log
	FileHost   *filehost.Client

	Thumbnails     bool
	ThumbnailOpts  asset.ThumbnailOptions
	MaxUploadBytes int64
}

// call is one invocation in flight.
type call struct {
	Params
	id string
}

type handler func(ctx context.Context, c *call) Result

// Tool dispatches actions. Invocations share no mutable state.
type Tool struct {
	deps     Deps
	handlers map[string]handler
}

// New returns a Tool over deps.
func New(deps Deps) *Tool {
	t := &Tool{deps: deps}
	t.handlers = map[string]handler{
		"generate":       t.generate,
		"generate_async": t.generateAsync,
		"job_status":     t.jobStatus,
		"list_jobs":      t.listJobs,
		"download":       t.download,
		"upload":         t.upload,
		"rehost":         t.rehost,
		"balance":        t.balance,
		"pricing":        t.pricing,
		"transactions":   t.transactions,
		"pods":           t.pods,
		"post":           t.post,
	}
	return t
}

// Actions lists the supported action names in sorted order.
func (t *Tool) Actions() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases the gallery log.
func (t *Tool) Close() error {
	if t.deps.Gallery != nil {
		return t.deps.Gallery.Close()
	}
	return nil
}

// Invoke runs one action. Failures are reported in the Result, never as a
// returned error.
func (t *Tool) Invoke(ctx context.Context, p Params) Result {
	c := &call{Params: p, id: uuid.NewString()}
	action := strings.ToLower(strings.TrimSpace(p.Action))

	h, ok := t.handlers[action]
	if !ok {
		res := failure("unknown action %q; valid actions: %s", p.Action, strings.Join(t.Actions(), ", "))
		res.InvocationID = c.id
		return res
	}

	start := time.Now()
	logging.Debug().With(logging.Action(action), logging.InvocationID(c.id)).Msg("invocation started")

	res := h(ctx, c)
	res.InvocationID = c.id

	logging.Info().With(
		logging.Action(action),
		logging.InvocationID(c.id),
		logging.OK(!res.IsError),
		logging.Duration(time.Since(start)),
	).Msg("invocation finished")
	return res
}

// generationFailure maps a failed generation-related call to a safe message.
// Raw upstream detail goes to the debug log only.
func generationFailure(c *call, resp *remote.Response, err error) Result {
	if err != nil {
		if msg, ok := localFailure(err); ok {
			return failureText(msg)
		}
		logging.Debug().With(logging.InvocationID(c.id), logging.Err(err)).Msg("generation call failed")
		if te, ok := transportFault(err); ok {
			return failureText(timeoutMessage(te))
		}
		return failureText(sanitize.Sanitize(err))
	}
	logging.Debug().With(
		logging.InvocationID(c.id),
		logging.Status(resp.Status),
		logging.Str("body", string(resp.Raw)),
	).Msg("generation rejected upstream")
	return failureText(sanitize.Sanitize(resp.Body))
}

// adminFailure wraps a failed administrative call verbatim.
func adminFailure(c *call, resp *remote.Response, err error) Result {
	if err != nil {
		if msg, ok := localFailure(err); ok {
			return failureText(msg)
		}
		logging.Debug().With(logging.InvocationID(c.id), logging.Err(err)).Msg("admin call failed")
		if te, ok := transportFault(err); ok {
			return failureText(timeoutMessage(te))
		}
		return failureText(err.Error())
	}
	return failureText(remote.APIError(resp).Error())
}

func localFailure(err error) (string, bool) {
	if errors.Is(err, remote.ErrInvalidID) {
		return err.Error(), true
	}
	return "", false
}

func transportFault(err error) (*remote.TransportError, bool) {
	var te *remote.TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// timeoutMessage is the fixed reply for every transport fault, timeouts and
// unreachable hosts alike.
func timeoutMessage(te *remote.TransportError) string {
	return fmt.Sprintf("Request timed out after %s.", te.Elapsed.Round(time.Millisecond))
}
