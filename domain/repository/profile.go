package repository

import (
	"context"

	"creator-contest/domain/model"
)

type IProfile interface {
	// MirrorPlatform copies the display fields from a credential onto the owner's public profile.
	MirrorPlatform(ctx context.Context, ownerID string, p model.PlatformProfile) error
	ClearPlatform(ctx context.Context, ownerID string) error
}
