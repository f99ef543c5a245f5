package tool

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/mediagate/internal/asset"
	"github.com/ppiankov/mediagate/internal/gallery"
	"github.com/ppiankov/mediagate/internal/logging"
	"github.com/ppiankov/mediagate/internal/pathguard"
	"github.com/ppiankov/mediagate/internal/remote"
	"github.com/ppiankov/mediagate/internal/sanitize"
)

const (
	kindImage = "image"
	kindVideo = "video"
)

// savedFile is the structured description of one saved asset.
type savedFile struct {
	AssetID     string `json:"asset_id,omitempty"`
	Path        string `json:"path"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	URL         string `json:"public_url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Bytes       int64  `json:"bytes"`
}

type saveRequest struct {
	action      string
	description string
	jobID       string
	assets      []remote.Asset
	// dest is a validated output path; empty means the scratch directory.
	dest   string
	rehost bool
}

func (c *call) generateRequest() (remote.GenerateRequest, string) {
	prompt := strings.TrimSpace(c.Prompt)
	if prompt == "" {
		return remote.GenerateRequest{}, "prompt is required"
	}
	kind := strings.ToLower(strings.TrimSpace(c.Kind))
	if kind == "" {
		kind = kindImage
	}
	if kind != kindImage && kind != kindVideo {
		return remote.GenerateRequest{}, "kind must be image or video"
	}
	if c.Width < 0 || c.Height < 0 || c.DurationSeconds < 0 {
		return remote.GenerateRequest{}, "width, height and duration_seconds must not be negative"
	}
	return remote.GenerateRequest{
		Prompt:          prompt,
		Kind:            kind,
		Model:           strings.TrimSpace(c.Model),
		NegativePrompt:  strings.TrimSpace(c.NegativePrompt),
		Width:           c.Width,
		Height:          c.Height,
		DurationSeconds: c.DurationSeconds,
		Seed:            c.Seed,
	}, ""
}

// outputPath validates the optional output_path before any network call.
func (t *Tool) outputPath(c *call) (string, string) {
	if strings.TrimSpace(c.OutputPath) == "" {
		return "", ""
	}
	dest, err := t.deps.Guard.ResolveForWrite(c.OutputPath)
	if err != nil {
		return "", err.Error()
	}
	return dest, ""
}

func (t *Tool) checkRehost(c *call) string {
	if c.Rehost && t.deps.FileHost == nil {
		return "re-hosting is disabled; set filehost.enabled in the config"
	}
	return ""
}

func (t *Tool) generate(ctx context.Context, c *call) Result {
	req, msg := c.generateRequest()
	if msg != "" {
		return failureText(msg)
	}
	dest, msg := t.outputPath(c)
	if msg != "" {
		return failureText(msg)
	}
	if msg := t.checkRehost(c); msg != "" {
		return failureText(msg)
	}

	resp, err := t.deps.API.Generate(ctx, req)
	if err != nil || !resp.OK {
		return generationFailure(c, resp, err)
	}

	var job remote.Job
	if err := resp.Decode(&job); err != nil {
		logging.Debug().With(logging.InvocationID(c.id), logging.Err(err)).Msg("undecodable generate response")
		return failureText(sanitize.Message(sanitize.Generic))
	}
	if job.Failed() {
		return failedJob(c, job)
	}
	if len(job.Assets) == 0 {
		return failureText(sanitize.Message(sanitize.Generic))
	}

	return t.saveAssets(ctx, c, saveRequest{
		action:      "generate",
		description: req.Prompt,
		jobID:       job.ID,
		assets:      job.Assets,
		dest:        dest,
		rehost:      c.Rehost,
	}, fmt.Sprintf("Generated %s (job %s).", req.Kind, job.ID))
}

func (t *Tool) generateAsync(ctx context.Context, c *call) Result {
	req, msg := c.generateRequest()
	if msg != "" {
		return failureText(msg)
	}

	resp, err := t.deps.API.SubmitJob(ctx, req)
	if err != nil || !resp.OK {
		return generationFailure(c, resp, err)
	}
	var job remote.Job
	if err := resp.Decode(&job); err != nil || job.ID == "" {
		return failureText(sanitize.Message(sanitize.Generic))
	}
	if job.Failed() {
		return failedJob(c, job)
	}

	return Result{
		Text: fmt.Sprintf("Submitted %s job %s (status %s). Check it with action=job_status job_id=%s.",
			req.Kind, job.ID, job.Status, job.ID),
		Data: job,
	}
}

func (t *Tool) jobStatus(ctx context.Context, c *call) Result {
	id := strings.TrimSpace(c.JobID)
	if id == "" {
		return failureText("job_id is required")
	}
	dest, msg := t.outputPath(c)
	if msg != "" {
		return failureText(msg)
	}
	if msg := t.checkRehost(c); msg != "" {
		return failureText(msg)
	}

	resp, err := t.deps.API.GetJob(ctx, id)
	if err != nil || !resp.OK {
		return generationFailure(c, resp, err)
	}
	var job remote.Job
	if err := resp.Decode(&job); err != nil {
		return failureText(sanitize.Message(sanitize.Generic))
	}
	if job.Failed() {
		return failedJob(c, job)
	}

	done := job.Status == remote.StatusCompleted && len(job.Assets) > 0
	if !done || (!c.Download && dest == "") {
		res := Result{Text: fmt.Sprintf("Job %s is %s.", job.ID, job.Status), Data: job}
		if done {
			res.Text += fmt.Sprintf(" %d asset(s) ready; call again with download=true to save them.", len(job.Assets))
		}
		return res
	}

	return t.saveAssets(ctx, c, saveRequest{
		action:      "job_status",
		description: job.Prompt,
		jobID:       job.ID,
		assets:      job.Assets,
		dest:        dest,
		rehost:      c.Rehost,
	}, fmt.Sprintf("Job %s is completed.", job.ID))
}

func (t *Tool) listJobs(ctx context.Context, c *call) Result {
	if c.Limit < 0 {
		return failureText("limit must not be negative")
	}
	resp, err := t.deps.API.ListJobs(ctx, strings.TrimSpace(c.Status), c.Limit)
	if err != nil || !resp.OK {
		return generationFailure(c, resp, err)
	}
	return jsonResult("Jobs", resp.Body)
}

func (t *Tool) download(ctx context.Context, c *call) Result {
	id := strings.TrimSpace(c.AssetID)
	if id == "" {
		return failureText("asset_id is required")
	}
	dest, msg := t.outputPath(c)
	if msg != "" {
		return failureText(msg)
	}
	if msg := t.checkRehost(c); msg != "" {
		return failureText(msg)
	}

	resp, err := t.deps.API.GetAsset(ctx, id)
	if err != nil || !resp.OK {
		return generationFailure(c, resp, err)
	}
	var a remote.Asset
	if err := resp.Decode(&a); err != nil || a.URL == "" {
		return failureText(sanitize.Message(sanitize.Generic))
	}
	if a.ID == "" {
		a.ID = id
	}

	return t.saveAssets(ctx, c, saveRequest{
		action:      "download",
		description: "asset " + a.ID,
		assets:      []remote.Asset{a},
		dest:        dest,
		rehost:      c.Rehost,
	}, fmt.Sprintf("Downloaded asset %s.", a.ID))
}

func failedJob(c *call, job remote.Job) Result {
	detail := job.Error
	if detail == nil {
		detail = job.Status
	}
	logging.Debug().With(logging.InvocationID(c.id), logging.JobID(job.ID), logging.Str("detail", fmt.Sprint(detail))).
		Msg("job reported failure")
	return failureText(sanitize.Sanitize(detail))
}

// saveAssets downloads every asset, thumbnails images, records the gallery
// entry and optionally re-hosts. Any failure fails the whole invocation.
func (t *Tool) saveAssets(ctx context.Context, c *call, req saveRequest, headline string) Result {
	var (
		files []savedFile
		media []Media
		lines = []string{headline}
	)

	for i, a := range req.assets {
		res, err := t.fetch(ctx, req, i, a)
		if err != nil {
			logging.Warn().With(logging.InvocationID(c.id), logging.JobID(req.jobID), logging.Err(err)).Msg("asset download failed")
			if asset.IsTooLarge(err) || errors.Is(err, pathguard.ErrNotAllowed) {
				return failureText(err.Error())
			}
			return failureText("Failed to download the generated asset. Please try again.")
		}

		file := savedFile{AssetID: a.ID, Path: res.Path, ContentType: res.ContentType, Bytes: res.Bytes}
		lines = append(lines, fmt.Sprintf("Saved: %s (%s)", res.Path, humanize.IBytes(uint64(res.Bytes))))

		if t.deps.Thumbnails && asset.IsImage(res.ContentType) {
			thumbPath, data, err := t.thumbnail(res.Path)
			if err != nil {
				logging.Warn().With(logging.InvocationID(c.id), logging.Path(res.Path), logging.Err(err)).Msg("thumbnail skipped")
			} else {
				file.Thumbnail = thumbPath
				media = append(media, Media{MIMEType: "image/jpeg", Data: data})
				lines = append(lines, "Thumbnail: "+thumbPath)
			}
		}

		if req.rehost {
			url, err := t.deps.FileHost.Upload(ctx, res.Path)
			if err != nil {
				return failure("Saved %s but re-hosting failed: %v", res.Path, err)
			}
			file.URL = url
			lines = append(lines, "Public URL: "+url)
		}

		t.record(c, req, file)
		files = append(files, file)
	}

	return Result{
		Text:  strings.Join(lines, "\n"),
		Media: media,
		Data:  map[string]any{"job_id": req.jobID, "files": files},
	}
}

// thumbnail writes the preview beside src once its path passes the allowlist.
func (t *Tool) thumbnail(src string) (string, []byte, error) {
	dst, err := t.deps.Guard.ResolveForWrite(asset.ThumbnailPath(src))
	if err != nil {
		return "", nil, err
	}
	data, err := asset.Thumbnail(src, dst, t.deps.ThumbnailOpts)
	if err != nil {
		return "", nil, err
	}
	return dst, data, nil
}

func (t *Tool) fetch(ctx context.Context, req saveRequest, i int, a remote.Asset) (*asset.Result, error) {
	if req.dest != "" {
		dest, err := t.deps.Guard.ResolveForWrite(indexedPath(req.dest, i))
		if err != nil {
			return nil, err
		}
		return t.deps.Downloader.FetchTo(ctx, a.URL, dest)
	}
	name := req.jobID
	if name == "" {
		name = a.ID
	}
	if len(req.assets) > 1 {
		name = fmt.Sprintf("%s-%d", name, i+1)
	}
	return t.deps.Downloader.Fetch(ctx, a.URL, name)
}

// indexedPath keeps the first asset at dest and numbers the rest beside it.
func indexedPath(dest string, i int) string {
	if i == 0 {
		return dest
	}
	ext := filepath.Ext(dest)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(dest, ext), i+1, ext)
}

func (t *Tool) record(c *call, req saveRequest, f savedFile) {
	if t.deps.Gallery == nil {
		return
	}
	err := t.deps.Gallery.Record(gallery.Entry{
		InvocationID: c.id,
		Action:       req.action,
		Description:  req.description,
		JobID:        req.jobID,
		AssetID:      f.AssetID,
		Path:         f.Path,
		Thumbnail:    f.Thumbnail,
		URL:          f.URL,
		ContentType:  f.ContentType,
		Bytes:        f.Bytes,
	})
	if err != nil {
		logging.Warn().With(logging.InvocationID(c.id), logging.Err(err)).Msg("gallery log write failed")
	}
}
