package repository

import (
	"context"

	"creator-contest/domain/model"
)

type IContest interface {
	// GetByID returns model.ErrContestNotFound for an unknown id.
	GetByID(ctx context.Context, id string) (*model.Contest, error)
	ListByStatus(ctx context.Context, status model.ContestStatus) ([]model.Contest, error)
	// RecomputeAggregates rebuilds totals by summing approved submissions.
	RecomputeAggregates(ctx context.Context, contestID string) error
}
