package model

// AnalyticsOverview backs the management dashboard charts.
type AnalyticsOverview struct {
	TotalPatients        []MonthlyCount `json:"total_patients"`
	GenderDistribution   []NamedCount   `json:"gender_distribution"`
	CaseTypeDistribution []NamedCount   `json:"case_type_distribution"`
	BookingStatistics    []NamedCount   `json:"booking_statistics"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
