package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creator-contest/domain/model"
)

type ContestRepository struct{ db *sql.DB }

func NewContestRepository(db *sql.DB) *ContestRepository { return &ContestRepository{db: db} }

const contestColumns = `id, title, status, winner_count, submission_count, total_views, total_likes, total_comments, total_shares, starts_at, ends_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContest(s rowScanner) (*model.Contest, error) {
	c := &model.Contest{}
	var startsAt, endsAt sql.NullTime
	if err := s.Scan(&c.ID, &c.Title, &c.Status, &c.WinnerCount, &c.SubmissionCount, &c.TotalViews, &c.TotalLikes,
		&c.TotalComments, &c.TotalShares, &startsAt, &endsAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if startsAt.Valid {
		c.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		c.EndsAt = &endsAt.Time
	}
	return c, nil
}

func (r *ContestRepository) GetByID(ctx context.Context, id string) (*model.Contest, error) {
	c, err := scanContest(r.db.QueryRowContext(ctx, `SELECT `+contestColumns+` FROM contests WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrContestNotFound
	}
	return c, err
}

func (r *ContestRepository) ListByStatus(ctx context.Context, status model.ContestStatus) ([]model.Contest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contestColumns+` FROM contests WHERE status=$1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.Contest
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// RecomputeAggregates overwrites the totals with fresh sums over approved submissions.
func (r *ContestRepository) RecomputeAggregates(ctx context.Context, contestID string) error {
	q := `UPDATE contests c SET
			submission_count=a.cnt,
			total_views=a.views,
			total_likes=a.likes,
			total_comments=a.comments,
			total_shares=a.shares,
			updated_at=$2
		  FROM (SELECT COUNT(*) AS cnt,
					COALESCE(SUM(views),0) AS views,
					COALESCE(SUM(likes),0) AS likes,
					COALESCE(SUM(comments),0) AS comments,
					COALESCE(SUM(shares),0) AS shares
				FROM submissions WHERE contest_id=$1 AND status='approved') a
		  WHERE c.id=$1`
	_, err := r.db.ExecContext(ctx, q, contestID, time.Now().UTC())
	return err
}
