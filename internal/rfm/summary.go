package rfm

import (
	"sort"

	"github.com/BerylCAtieno/rfm-workbench/internal/models"
)

// Summarize condenses records into averages, a high-value count and a top-N leaderboard.
// Customers count as high value when their RFM_Score is at least threshold.
func Summarize(records []models.CustomerRFM, threshold, top int) models.Summary {
	s := models.Summary{Customers: len(records), Threshold: threshold}
	if len(records) == 0 {
		return s
	}

	var rec, freq, mon, score float64
	for _, r := range records {
		rec += float64(r.Recency)
		freq += float64(r.Frequency)
		mon += r.Monetary
		score += float64(r.Score)
		if r.Score >= threshold {
			s.HighValue++
		}
	}
	n := float64(len(records))
	s.MeanRecency = rec / n
	s.MeanFrequency = freq / n
	s.MeanMonetary = mon / n
	s.MeanScore = score / n

	ranked := make([]models.CustomerRFM, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Monetary > ranked[j].Monetary
	})
	if top > len(ranked) {
		top = len(ranked)
	}
	for _, r := range ranked[:max(top, 0)] {
		s.Leaderboard = append(s.Leaderboard, models.LeaderboardEntry{
			CustomerID: r.CustomerID,
			Score:      r.Score,
			Segment:    r.Segment,
			Monetary:   r.Monetary,
		})
	}
	return s
}
