package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"creator-contest/domain/dto"
	"creator-contest/domain/model"
	"creator-contest/infrastructure/logger"

	"github.com/google/go-querystring/query"
)

const (
	userInfoPath   = "/v2/user/info/"
	videoQueryPath = "/v2/video/query/"
	videoListPath  = "/v2/video/list/"

	userFields  = "open_id,union_id,avatar_url,display_name,username,is_verified,follower_count"
	videoFields = "id,title,video_description,duration,create_time,cover_image_url,share_url,view_count,like_count,comment_count,share_count"

	// The platform accepts at most 20 ids per query and 20 items per list page.
	maxBatch = 20

	maxBodyBytes = 4 << 20
)

var transientCodes = map[string]bool{
	"rate_limit_exceeded": true,
	"internal_error":      true,
	"server_error":        true,
	"timeout":             true,
	"network_error":       true,
}

// Client is the rate-limited platform API client. One instance is shared by every caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *RateLimiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		limiter:    NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) RateLimit() RateLimitInfo {
	return c.limiter.Info()
}

// Request issues one call and decodes the data envelope into out.
// q is encoded with go-querystring; body, when non-nil, is sent as JSON.
func (c *Client) Request(ctx context.Context, method, path string, q interface{}, body interface{}, accessToken string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &model.PlatformAPIError{Message: err.Error(), Code: "timeout", Transient: true}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + path
	if q != nil {
		values, err := query.Values(q)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if enc := values.Encode(); enc != "" {
			endpoint += "?" + enc
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := "network_error"
		if errors.Is(err, context.DeadlineExceeded) {
			code = "timeout"
		}
		return &model.PlatformAPIError{Message: err.Error(), Code: code, Transient: true}
	}
	defer resp.Body.Close()

	c.limiter.Update(resp.Header, resp.StatusCode, c.limiter.now())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &model.PlatformAPIError{Message: err.Error(), Code: "network_error", HTTPStatus: resp.StatusCode, Transient: true}
	}

	var envelope struct {
		Error dto.TikTokError `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, envelope.Error)
	}
	if decodeErr != nil {
		return &model.PlatformAPIError{Message: "malformed response body", Code: "invalid_response", HTTPStatus: resp.StatusCode}
	}
	if !envelope.Error.OK() {
		return newAPIError(resp.StatusCode, envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &model.PlatformAPIError{Message: err.Error(), Code: "invalid_response", HTTPStatus: resp.StatusCode}
		}
	}
	return nil
}

func newAPIError(status int, e dto.TikTokError) *model.PlatformAPIError {
	code := e.Code
	if code == "" || code == "ok" {
		code = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &model.PlatformAPIError{
		Message:    msg,
		Code:       code,
		LogID:      e.LogID,
		HTTPStatus: status,
		Transient:  isTransient(status, code),
	}
}

// isTransient separates retry-next-cycle failures from auth and not-found errors.
func isTransient(status int, code string) bool {
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return transientCodes[code]
}

func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*model.PlatformProfile, error) {
	var res dto.TikTokUserInfoResponse
	err := c.Request(ctx, http.MethodGet, userInfoPath, dto.TikTokFieldsQuery{Fields: userFields}, nil, accessToken, &res)
	if err != nil {
		return nil, err
	}
	u := res.Data.User
	return &model.PlatformProfile{
		OpenID:        u.OpenID,
		DisplayName:   u.DisplayName,
		Handle:        u.Username,
		AvatarURL:     u.AvatarURL,
		FollowerCount: u.FollowerCount,
		IsVerified:    u.IsVerified,
	}, nil
}

// QueryVideos fetches the given videos, splitting the ids into platform-sized batches.
func (c *Client) QueryVideos(ctx context.Context, accessToken string, videoIDs []string) ([]model.PlatformVideo, error) {
	videos := make([]model.PlatformVideo, 0, len(videoIDs))
	for start := 0; start < len(videoIDs); start += maxBatch {
		end := start + maxBatch
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		var res dto.TikTokVideoResponse
		body := dto.TikTokVideoQueryRequest{Filters: dto.TikTokVideoFilters{VideoIDs: videoIDs[start:end]}}
		err := c.Request(ctx, http.MethodPost, videoQueryPath, dto.TikTokFieldsQuery{Fields: videoFields}, body, accessToken, &res)
		if err != nil {
			return nil, err
		}
		for _, v := range res.Data.Videos {
			videos = append(videos, toPlatformVideo(v))
		}
	}
	logger.GetLogger().WithField("requested", len(videoIDs)).WithField("returned", len(videos)).Debug("queried videos")
	return videos, nil
}

func (c *Client) ListVideos(ctx context.Context, accessToken string, cursor int64, maxCount int) (*model.VideoPage, error) {
	if maxCount <= 0 || maxCount > maxBatch {
		maxCount = maxBatch
	}
	var res dto.TikTokVideoResponse
	body := dto.TikTokVideoListRequest{Cursor: cursor, MaxCount: maxCount}
	err := c.Request(ctx, http.MethodPost, videoListPath, dto.TikTokFieldsQuery{Fields: videoFields}, body, accessToken, &res)
	if err != nil {
		return nil, err
	}
	page := &model.VideoPage{
		Videos:  make([]model.PlatformVideo, 0, len(res.Data.Videos)),
		Cursor:  res.Data.Cursor,
		HasMore: res.Data.HasMore,
	}
	for _, v := range res.Data.Videos {
		page.Videos = append(page.Videos, toPlatformVideo(v))
	}
	return page, nil
}

func toPlatformVideo(v dto.TikTokVideo) model.PlatformVideo {
	stats := model.VideoStats{
		Views:           v.ViewCount,
		Likes:           v.LikeCount,
		Comments:        v.CommentCount,
		Shares:          v.ShareCount,
		DurationSeconds: v.Duration,
		Title:           v.Title,
		Description:     v.VideoDescription,
	}
	if v.CreateTime > 0 {
		stats.CreatedAt = time.Unix(v.CreateTime, 0).UTC()
	}
	return model.PlatformVideo{ID: v.ID, Stats: stats}
}
