package models

import (
	"fmt"
	"strings"
)

// Text renders the summary as plain text suitable for a prompt prefix.
func (s Summary) Text() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("RFM analysis of %d customers:\n", s.Customers))
	builder.WriteString(fmt.Sprintf("- Average recency: %.1f days\n", s.MeanRecency))
	builder.WriteString(fmt.Sprintf("- Average frequency: %.2f purchases\n", s.MeanFrequency))
	builder.WriteString(fmt.Sprintf("- Average monetary value: $%.2f\n", s.MeanMonetary))
	builder.WriteString(fmt.Sprintf("- Average RFM score: %.2f\n", s.MeanScore))
	builder.WriteString(fmt.Sprintf("- Customers with RFM score >= %d: %d\n", s.Threshold, s.HighValue))

	if len(s.Leaderboard) > 0 {
		builder.WriteString(fmt.Sprintf("\nTop %d customers by RFM score:\n", len(s.Leaderboard)))
		for i, e := range s.Leaderboard {
			builder.WriteString(fmt.Sprintf("%d. %s (score %d, segment %s, $%.2f)\n", i+1, e.CustomerID, e.Score, e.Segment, e.Monetary))
		}
	}
	return builder.String()
}
