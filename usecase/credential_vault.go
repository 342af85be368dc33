package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creator-contest/domain/model"
	"creator-contest/domain/repository"
	"creator-contest/infrastructure/cryptox"
	"creator-contest/infrastructure/logger"

	"golang.org/x/sync/singleflight"
)

type ICredentialVault interface {
	Store(ctx context.Context, ownerID string, grant model.TokenGrant, profile model.PlatformProfile) error
	// GetValidAccessToken never fails: a missing, undecryptable or unrefreshable credential
	// reports ok=false and the cause is logged.
	GetValidAccessToken(ctx context.Context, ownerID string) (token string, ok bool)
	Disconnect(ctx context.Context, ownerID string) error
	Connect(ctx context.Context, ownerID, code string) (*model.ConnectionStatus, error)
	Status(ctx context.Context, ownerID string) (*model.ConnectionStatus, error)
}

type credentialVault struct {
	credentials repository.ICredential
	profiles    repository.IProfile
	cipher      cryptox.ITokenCipher
	tokens      repository.ITokenSource
	platform    repository.IPlatform
	skew        time.Duration
	now         func() time.Time

	// refreshes collapses concurrent refreshes for the same owner into one call.
	refreshes singleflight.Group
}

func NewCredentialVault(
	credentials repository.ICredential,
	profiles repository.IProfile,
	cipher cryptox.ITokenCipher,
	tokens repository.ITokenSource,
	platform repository.IPlatform,
	skew time.Duration,
) ICredentialVault {
	return &credentialVault{
		credentials: credentials,
		profiles:    profiles,
		cipher:      cipher,
		tokens:      tokens,
		platform:    platform,
		skew:        skew,
		now:         time.Now,
	}
}

func (v *credentialVault) Store(ctx context.Context, ownerID string, grant model.TokenGrant, profile model.PlatformProfile) error {
	if ownerID == "" {
		return errors.New("owner id required")
	}
	if grant.AccessToken == "" {
		return errors.New("access token required")
	}
	encAccess, err := v.cipher.Encrypt(grant.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	encRefresh, err := v.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}
	platformUserID := profile.OpenID
	if platformUserID == "" {
		platformUserID = grant.OpenID
	}
	rec := &model.CredentialRecord{
		OwnerID:               ownerID,
		EncryptedAccessToken:  encAccess,
		EncryptedRefreshToken: encRefresh,
		ExpiresAt:             v.now().Add(time.Duration(grant.ExpiresInSeconds) * time.Second).UTC(),
		PlatformUserID:        platformUserID,
		Handle:                profile.Handle,
		DisplayName:           profile.DisplayName,
		FollowerCount:         profile.FollowerCount,
		IsVerified:            profile.IsVerified,
	}
	if err := v.credentials.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	if err := v.profiles.MirrorPlatform(ctx, ownerID, profile); err != nil {
		logger.GetLogger().WithField("owner_id", ownerID).WithField("error", err).Warn("failed mirroring platform profile")
	}
	return nil
}

func (v *credentialVault) GetValidAccessToken(ctx context.Context, ownerID string) (string, bool) {
	rec, err := v.credentials.GetByOwner(ctx, ownerID)
	if err != nil {
		logger.GetLogger().WithField("owner_id", ownerID).WithField("error", err).Warn("failed loading credential")
		return "", false
	}
	if rec == nil {
		return "", false
	}
	if !rec.Expired(v.now(), v.skew) {
		return v.decryptAccess(rec)
	}

	// The refresh is shared by every waiter, so it must outlive the caller that started it.
	res, err, _ := v.refreshes.Do(ownerID, func() (interface{}, error) {
		return v.refresh(context.WithoutCancel(ctx), ownerID)
	})
	if err != nil {
		logger.GetLogger().WithField("owner_id", ownerID).WithField("error", err).Warn("credential refresh failed")
		return "", false
	}
	return res.(string), true
}

// refresh reloads the record first so a caller that lost the race reuses the fresh token.
func (v *credentialVault) refresh(ctx context.Context, ownerID string) (string, error) {
	rec, err := v.credentials.GetByOwner(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", model.ErrCredentialMissing
	}
	if !rec.Expired(v.now(), v.skew) {
		if tok, ok := v.decryptAccess(rec); ok {
			return tok, nil
		}
		return "", model.ErrDecryption
	}
	refreshToken, err := v.cipher.Decrypt(rec.EncryptedRefreshToken)
	if err != nil || refreshToken == "" {
		return "", model.ErrDecryption
	}
	grant, err := v.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if grant.RefreshToken == "" {
		grant.RefreshToken = refreshToken
	}
	encAccess, err := v.cipher.Encrypt(grant.AccessToken)
	if err != nil {
		return "", err
	}
	encRefresh, err := v.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		return "", err
	}
	rec.EncryptedAccessToken = encAccess
	rec.EncryptedRefreshToken = encRefresh
	rec.ExpiresAt = v.now().Add(time.Duration(grant.ExpiresInSeconds) * time.Second).UTC()
	if err := v.credentials.Upsert(ctx, rec); err != nil {
		return "", err
	}
	logger.GetLogger().WithField("owner_id", ownerID).WithField("expires_at", rec.ExpiresAt).Info("platform credential refreshed")
	return grant.AccessToken, nil
}

func (v *credentialVault) decryptAccess(rec *model.CredentialRecord) (string, bool) {
	tok, err := v.cipher.Decrypt(rec.EncryptedAccessToken)
	if err != nil || tok == "" {
		logger.GetLogger().WithField("owner_id", rec.OwnerID).Warn("stored access token could not be decrypted")
		return "", false
	}
	return tok, true
}

func (v *credentialVault) Disconnect(ctx context.Context, ownerID string) error {
	rec, err := v.credentials.GetByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if rec != nil {
		if tok, ok := v.decryptAccess(rec); ok {
			if err := v.tokens.Revoke(ctx, tok); err != nil {
				logger.GetLogger().WithField("owner_id", ownerID).WithField("error", err).Warn("token revoke failed, removing credential anyway")
			}
		}
	}
	if err := v.credentials.DeleteByOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if err := v.profiles.ClearPlatform(ctx, ownerID); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

func (v *credentialVault) Connect(ctx context.Context, ownerID, code string) (*model.ConnectionStatus, error) {
	grant, err := v.tokens.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	profile, err := v.platform.FetchUserInfo(ctx, grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if err := v.Store(ctx, ownerID, *grant, *profile); err != nil {
		return nil, err
	}
	return v.Status(ctx, ownerID)
}

func (v *credentialVault) Status(ctx context.Context, ownerID string) (*model.ConnectionStatus, error) {
	rec, err := v.credentials.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &model.ConnectionStatus{Connected: false}, nil
	}
	expires := rec.ExpiresAt
	return &model.ConnectionStatus{
		Connected:     true,
		Handle:        rec.Handle,
		DisplayName:   rec.DisplayName,
		FollowerCount: rec.FollowerCount,
		IsVerified:    rec.IsVerified,
		ExpiresAt:     &expires,
	}, nil
}
