package tiktok

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"creator-contest/domain/model"
	"creator-contest/infrastructure/logger"
)

const (
	maxShareLinkHops = 5
	shareLinkAgent   = "Mozilla/5.0 (compatible; creator-contest/1.0)"
)

var videoPathPattern = regexp.MustCompile(`/video/\d+`)

// ShareLinkResolver follows short share-link redirects until they name a video.
// The canonical page itself is never fetched.
type ShareLinkResolver struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewShareLinkResolver copies hc (or a default client) so redirects are handled hop by hop.
func NewShareLinkResolver(timeout time.Duration, hc *http.Client) *ShareLinkResolver {
	client := &http.Client{}
	if hc != nil {
		copied := *hc
		client = &copied
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &ShareLinkResolver{httpClient: client, timeout: timeout}
}

func (r *ShareLinkResolver) ResolveShareLink(ctx context.Context, rawURL string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	current, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse share link: %w", model.ErrInvalidURL)
	}

	for hop := 0; hop < maxShareLinkHops; hop++ {
		next, done, err := r.step(ctx, current)
		if err != nil {
			return "", err
		}
		if done || videoPathPattern.MatchString(next.Path) {
			logger.GetLogger().WithField("share_link", rawURL).WithField("resolved", next.String()).Debug("share link resolved")
			return next.String(), nil
		}
		current = next
	}
	return "", fmt.Errorf("share link %s: too many redirects", rawURL)
}

// step issues one request; done reports a non-redirect answer, in which case next is the URL just fetched.
func (r *ShareLinkResolver) step(ctx context.Context, target *url.URL) (next *url.URL, done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("share link request: %w", model.ErrInvalidURL)
	}
	req.Header.Set("User-Agent", shareLinkAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		loc, err := resp.Location()
		if errors.Is(err, http.ErrNoLocation) {
			return nil, false, fmt.Errorf("share link redirect without location: %w", model.ErrInvalidURL)
		}
		if err != nil {
			return nil, false, err
		}
		return loc, false, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("share link returned %d: %w", resp.StatusCode, model.ErrInvalidURL)
	case resp.StatusCode >= 500:
		return nil, false, fmt.Errorf("share link returned %d", resp.StatusCode)
	default:
		return target, true, nil
	}
}
