package ranking

import (
	"sort"

	"creator-contest/domain/model"
)

// Order sorts submissions into leaderboard order: final score descending,
// then earliest submission, then id. No two distinct submissions compare equal.
func Order(subs []model.Submission) []model.Submission {
	out := make([]model.Submission, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// Assign ranks the submissions and flags the first winnerCount positions as winners.
// The result covers every input submission, in rank order.
func Assign(subs []model.Submission, winnerCount int) []model.RankAssignment {
	ordered := Order(subs)
	ranks := make([]model.RankAssignment, 0, len(ordered))
	for i, s := range ordered {
		ranks = append(ranks, model.RankAssignment{
			SubmissionID: s.ID,
			RankPosition: i + 1,
			IsWinner:     i < winnerCount,
		})
	}
	return ranks
}

// Winners returns the submission ids flagged as winners.
func Winners(ranks []model.RankAssignment) []string {
	ids := []string{}
	for _, r := range ranks {
		if r.IsWinner {
			ids = append(ids, r.SubmissionID)
		}
	}
	return ids
}
