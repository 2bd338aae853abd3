package leaderboard

import (
	"sort"

	"github.com/riskibarqy/fantasy-cycling/internal/domain/roster"
)

// TeamEntry is one team with its owner and current roster.
type TeamEntry struct {
	Team    roster.Team
	User    roster.User
	Members []roster.TeamMember
}

type Entry struct {
	Rank            int    `json:"rank"`
	TeamID          string `json:"teamId"`
	TeamName        string `json:"teamName"`
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	TotalPoints     int    `json:"totalPoints"`
	LastRoundPoints int    `json:"lastRoundPoints"`
}

// BuildEntries ranks teams by total points, then by team name. Ties never
// share a rank. Riders missing from latestRoundPoints contribute nothing.
func BuildEntries(teams []TeamEntry, latestRoundPoints map[string]int) []Entry {
	out := make([]Entry, 0, len(teams))
	for _, item := range teams {
		lastRound := 0
		for _, member := range item.Members {
			lastRound += latestRoundPoints[member.RiderID]
		}
		out = append(out, Entry{
			TeamID:          item.Team.ID,
			TeamName:        item.Team.Name,
			UserID:          item.User.ID,
			UserName:        item.User.DisplayName,
			TotalPoints:     item.Team.TotalPoints,
			LastRoundPoints: lastRound,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].TeamID < out[j].TeamID
	})

	for idx := range out {
		out[idx].Rank = idx + 1
	}
	return out
}
