package dto

// TikTokError is the error object carried by every platform response.
// Code "ok" (or empty) means success.
type TikTokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (e TikTokError) OK() bool { return e.Code == "" || e.Code == "ok" }

type TikTokUserInfoResponse struct {
	Data struct {
		User TikTokUser `json:"user"`
	} `json:"data"`
	Error TikTokError `json:"error"`
}

type TikTokUser struct {
	OpenID        string `json:"open_id"`
	UnionID       string `json:"union_id"`
	AvatarURL     string `json:"avatar_url"`
	DisplayName   string `json:"display_name"`
	Username      string `json:"username"`
	IsVerified    bool   `json:"is_verified"`
	FollowerCount int64  `json:"follower_count"`
}

type TikTokVideo struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	VideoDescription string `json:"video_description"`
	Duration         int    `json:"duration"`
	CreateTime       int64  `json:"create_time"`
	CoverImageURL    string `json:"cover_image_url"`
	ShareURL         string `json:"share_url"`
	ViewCount        int64  `json:"view_count"`
	LikeCount        int64  `json:"like_count"`
	CommentCount     int64  `json:"comment_count"`
	ShareCount       int64  `json:"share_count"`
}

type TikTokVideoQueryRequest struct {
	Filters TikTokVideoFilters `json:"filters"`
}

type TikTokVideoFilters struct {
	VideoIDs []string `json:"video_ids"`
}

type TikTokVideoListRequest struct {
	Cursor   int64 `json:"cursor,omitempty"`
	MaxCount int   `json:"max_count,omitempty"`
}

type TikTokVideoResponse struct {
	Data struct {
		Videos  []TikTokVideo `json:"videos"`
		Cursor  int64         `json:"cursor"`
		HasMore bool          `json:"has_more"`
	} `json:"data"`
	Error TikTokError `json:"error"`
}

// TikTokFieldsQuery is encoded into the query string of user and video calls.
type TikTokFieldsQuery struct {
	Fields string `url:"fields"`
}

// TikTokTokenResponse is the token endpoint payload. It is flat, unlike the data endpoints.
type TikTokTokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	OpenID           string `json:"open_id"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	LogID            string `json:"log_id,omitempty"`
}
