package models

import "time"

// CustomerRFM is one row of the RFM report.
type CustomerRFM struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	RScore     int     `json:"R_score"`
	FScore     int     `json:"F_score"`
	MScore     int     `json:"M_score"`
	Segment    string  `json:"RFM_Segment"`
	Score      int     `json:"RFM_Score"`
}

// LeaderboardEntry is a top-scoring customer listed in a Summary.
type LeaderboardEntry struct {
	CustomerID string  `json:"customer_id"`
	Score      int     `json:"RFM_Score"`
	Segment    string  `json:"RFM_Segment"`
	Monetary   float64 `json:"monetary"`
}

// Summary condenses an RFM report into a few statistics for the chat prompt.
type Summary struct {
	Customers     int                `json:"customers"`
	MeanRecency   float64            `json:"mean_recency"`
	MeanFrequency float64            `json:"mean_frequency"`
	MeanMonetary  float64            `json:"mean_monetary"`
	MeanScore     float64            `json:"mean_score"`
	Threshold     int                `json:"threshold"`
	HighValue     int                `json:"high_value"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}

// Exchange is a single prompt/response pair.
type Exchange struct {
	Prompt         string    `json:"prompt"`
	Response       string    `json:"response"`
	IncludeSummary bool      `json:"include_summary"`
	Model          string    `json:"model"`
	At             time.Time `json:"at"`
}
