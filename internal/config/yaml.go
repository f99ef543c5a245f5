package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const fileHeader = `# mediagate configuration.
# Every key can be overridden with an environment variable:
#   api.key -> MEDIAGATE_API_KEY, download.max_bytes -> MEDIAGATE_DOWNLOAD_MAX_BYTES
#
# paths.scratch, paths.workspace and paths.media are the only directories
# the tool will read from or write to.

`

// RenderYAML returns cfg as a commented YAML document. The API key is never
// written; set it through MEDIAGATE_API_KEY or edit the file afterwards.
func RenderYAML(cfg Config) (string, error) {
	cfg.API.Key = ""
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("config: render yaml: %w", err)
	}
	return fileHeader + string(data), nil
}
