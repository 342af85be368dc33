package repository

import (
	"context"

	"creator-contest/domain/model"
)

// IPlatform is the video platform API surface used by the contest flows.
type IPlatform interface {
	FetchUserInfo(ctx context.Context, accessToken string) (*model.PlatformProfile, error)
	QueryVideos(ctx context.Context, accessToken string, videoIDs []string) ([]model.PlatformVideo, error)
	ListVideos(ctx context.Context, accessToken string, cursor int64, maxCount int) (*model.VideoPage, error)
}

// ITokenSource talks to the platform's OAuth token endpoints.
type ITokenSource interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.TokenGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error)
	Revoke(ctx context.Context, accessToken string) error
}

// ILinkResolver follows a short share link to the URL it redirects to.
type ILinkResolver interface {
	ResolveShareLink(ctx context.Context, rawURL string) (string, error)
}
