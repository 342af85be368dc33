package configuration

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultTikTokAPIBaseURL = "https://open.tiktokapis.com"
	defaultTikTokAuthURL    = "https://www.tiktok.com/v2/auth/authorize/"
	defaultTikTokTokenURL   = "https://open.tiktokapis.com/v2/oauth/token/"
	defaultTikTokRevokeURL  = "https://open.tiktokapis.com/v2/oauth/revoke/"
)

var defaultTikTokScopes = []string{"user.info.basic", "user.info.profile", "user.info.stats", "video.list"}

func initTikTok(C *Config) {
	scheme := "http"
	if C.App.TLSEnabled {
		scheme = "https"
	}
	defaultRedirect := fmt.Sprintf("%s://localhost:%d/auth/tiktok/callback", scheme, C.App.Port)

	t := &C.TikTok
	t.ClientKey = getConfigValue(t.ClientKey, "TIKTOK_CLIENT_KEY", "")
	t.ClientSecret = getConfigValue(t.ClientSecret, "TIKTOK_CLIENT_SECRET", "")
	t.RedirectURI = getConfigValue(t.RedirectURI, "TIKTOK_REDIRECT_URI", defaultRedirect)
	t.APIBaseURL = strings.TrimRight(getConfigValue(t.APIBaseURL, "TIKTOK_API_BASE_URL", defaultTikTokAPIBaseURL), "/")
	t.AuthURL = getConfigValue(t.AuthURL, "TIKTOK_AUTH_URL", defaultTikTokAuthURL)
	t.TokenURL = getConfigValue(t.TokenURL, "TIKTOK_TOKEN_URL", defaultTikTokTokenURL)
	t.RevokeURL = getConfigValue(t.RevokeURL, "TIKTOK_REVOKE_URL", defaultTikTokRevokeURL)
	t.SuccessRedirectURL = getConfigValue(t.SuccessRedirectURL, "TIKTOK_SUCCESS_REDIRECT_URL", "")
	if len(t.Scopes) == 0 {
		t.Scopes = defaultTikTokScopes
	}
	if t.RequestTimeoutSeconds <= 0 {
		t.RequestTimeoutSeconds = 15
	}
	if C.App.TLSEnabled && !hasHTTPS(t.RedirectURI) {
		t.RedirectURI = toHTTPSCallback(t.RedirectURI)
	}
}

func (t TikTok) RequestTimeout() time.Duration {
	return time.Duration(t.RequestTimeoutSeconds) * time.Second
}

// getConfigValue prefers the environment, then a non-placeholder config value, then the default.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
