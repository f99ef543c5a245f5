package gallery

// Entry is one line in the gallery log: a single saved asset.
type Entry struct {
	Timestamp    string `json:"ts"`
	InvocationID string `json:"invocation_id,omitempty"`
	Action       string `json:"action"`
	Description  string `json:"description"`
	JobID        string `json:"job_id,omitempty"`
	AssetID      string `json:"asset_id,omitempty"`
	Path         string `json:"path"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	URL          string `json:"url,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	Bytes        int64  `json:"bytes,omitempty"`
}
