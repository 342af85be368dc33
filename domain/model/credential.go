package model

import "time"

// CredentialRecord holds one owner's encrypted platform tokens and cached profile.
type CredentialRecord struct {
	ID                    int64     `json:"id"`
	OwnerID               string    `json:"owner_id"`
	EncryptedAccessToken  string    `json:"-"`
	EncryptedRefreshToken string    `json:"-"`
	ExpiresAt             time.Time `json:"expires_at"`
	PlatformUserID        string    `json:"platform_user_id"`
	Handle                string    `json:"handle"`
	DisplayName           string    `json:"display_name"`
	FollowerCount         int64     `json:"follower_count"`
	IsVerified            bool      `json:"is_verified"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Expired reports whether the access token should be refreshed before use.
func (c *CredentialRecord) Expired(now time.Time, skew time.Duration) bool {
	return !now.Add(skew).Before(c.ExpiresAt)
}

// TokenGrant is a plaintext token pair as returned by the platform token endpoint.
type TokenGrant struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresInSeconds int64  `json:"expires_in"`
	OpenID           string `json:"open_id"`
}

// PlatformProfile is the subset of the platform user profile cached with the credential.
type PlatformProfile struct {
	OpenID        string `json:"open_id"`
	DisplayName   string `json:"display_name"`
	Handle        string `json:"username"`
	AvatarURL     string `json:"avatar_url"`
	FollowerCount int64  `json:"follower_count"`
	IsVerified    bool   `json:"is_verified"`
}

// ConnectionStatus is what the UI sees about an owner's platform link.
type ConnectionStatus struct {
	Connected     bool       `json:"connected"`
	Handle        string     `json:"handle,omitempty"`
	DisplayName   string     `json:"display_name,omitempty"`
	FollowerCount int64      `json:"follower_count,omitempty"`
	IsVerified    bool       `json:"is_verified"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
