package translation

import (
	"strings"

	"github.com/sashabaranov/go-openai"
)

const apiVersionSuffix = "/v1"

// NormalizeBaseURL makes sure a custom endpoint ends in exactly one /v1.
// An empty value selects the provider default.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return openai.DefaultConfig("").BaseURL
	}
	if strings.HasSuffix(base, apiVersionSuffix) {
		return base
	}
	return base + apiVersionSuffix
}
