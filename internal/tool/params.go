package tool

// Params is the flat parameter set accepted by the tool. Only Action is
// required; each action validates the fields it uses before any network call.
type Params struct {
	Action string `json:"action" jsonschema:"one of: generate, generate_async, job_status, list_jobs, download, upload, rehost, balance, pricing, transactions, pods, post"`

	Prompt          string `json:"prompt,omitempty" jsonschema:"description of the media to generate"`
	Kind            string `json:"kind,omitempty" jsonschema:"image or video (default image)"`
	Model           string `json:"model,omitempty" jsonschema:"model name understood by the generation service"`
	NegativePrompt  string `json:"negative_prompt,omitempty" jsonschema:"what the output should avoid"`
	Width           int    `json:"width,omitempty" jsonschema:"output width in pixels"`
	Height          int    `json:"height,omitempty" jsonschema:"output height in pixels"`
	DurationSeconds int    `json:"duration_seconds,omitempty" jsonschema:"video length in seconds"`
	Seed            *int64 `json:"seed,omitempty" jsonschema:"random seed for reproducible output"`

	JobID      string `json:"job_id,omitempty" jsonschema:"job identifier for job_status"`
	AssetID    string `json:"asset_id,omitempty" jsonschema:"asset identifier for download"`
	Download   bool   `json:"download,omitempty" jsonschema:"with job_status: save the assets of a completed job"`
	Path       string `json:"path,omitempty" jsonschema:"local file for upload or rehost"`
	OutputPath string `json:"output_path,omitempty" jsonschema:"where to save a downloaded asset (must be in an allowed directory)"`
	Status     string `json:"status,omitempty" jsonschema:"job status filter for list_jobs"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of items to list"`
	Rehost     bool   `json:"rehost,omitempty" jsonschema:"also upload the saved asset to the public file host"`

	Platform string `json:"platform,omitempty" jsonschema:"social platform for post"`
	Text     string `json:"text,omitempty" jsonschema:"post text"`
	MediaURL string `json:"media_url,omitempty" jsonschema:"public media URL to attach to the post"`
}
