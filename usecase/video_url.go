package usecase

import (
	"regexp"
	"strings"
)

// Links that carry the numeric video id.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.|m\.)?tiktok\.com/@[\w.\-]+/video/(\d+)(?:[/?#].*)?$`),
	regexp.MustCompile(`^https?://m\.tiktok\.com/v/(\d+)\.html(?:[?#].*)?$`),
}

// Short share links only carry a redirect code; the id is known after following the redirect.
var shortLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:vm|vt)\.tiktok\.com/[A-Za-z0-9]+/?(?:[?#].*)?$`),
	regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/t/[A-Za-z0-9]+/?(?:[?#].*)?$`),
}

// ExtractVideoID pulls the platform video id out of a link. Short links are not accepted here.
func ExtractVideoID(rawURL string) (string, bool) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return "", false
	}
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(u); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func IsShortLink(rawURL string) bool {
	u := strings.TrimSpace(rawURL)
	for _, re := range shortLinkPatterns {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}
