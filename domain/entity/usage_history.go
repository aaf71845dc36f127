package entity

// UsageHistoryRecord is one persisted poll result
type UsageHistoryRecord struct {
	ID              int64   `json:"id"`
	Timestamp       int64   `json:"timestamp"`
	UsagePercent    float64 `json:"usage_percent"`
	TokensUsed      int64   `json:"tokens_used"`
	TokensLimit     int64   `json:"tokens_limit"`
	TokensRemaining int64   `json:"tokens_remaining"`
	ResetTime       *string `json:"reset_time"`
}

// UsageStatistics summarizes persisted usage over a time range
type UsageStatistics struct {
	AverageUsage float64 `json:"average_usage"`
	PeakUsage    float64 `json:"peak_usage"`
	MinUsage     float64 `json:"min_usage"`
	TotalRecords int64   `json:"total_records"`
}
