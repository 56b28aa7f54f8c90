package model

import "time"

type ContestPhase string

const (
	PhaseUpcoming ContestPhase = "Upcoming"
	PhaseLive     ContestPhase = "Live"
	PhaseEnded    ContestPhase = "Ended"
)

type Contest struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	ProblemSlugs      []string  `json:"problem_slugs"`
	RegisteredUserIDs []string  `json:"registered_user_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PhaseAt derives the contest phase from the given instant. No stored
// phase value exists; every read recomputes this.
func (c *Contest) PhaseAt(now time.Time) ContestPhase {
	switch {
	case now.Before(c.StartTime):
		return PhaseUpcoming
	case now.Before(c.EndTime):
		return PhaseLive
	default:
		return PhaseEnded
	}
}

func (c *Contest) IsRegistered(userID string) bool {
	for _, id := range c.RegisteredUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
