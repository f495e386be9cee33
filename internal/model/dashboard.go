package model

// DashboardStats represents the general statistics shown to admins
type DashboardStats struct {
	TotalMembers        int64  `json:"totalMembers"`
	NewMembers          int64  `json:"newMembers"`
	MonthlyRevenue      string `json:"monthlyRevenue"` // Two decimals
	ExpiringMemberships int64  `json:"expiringMemberships"`
}

// SummaryValue is a billing figure with its change over the previous period
type SummaryValue struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// BillingSummary represents the billing dashboard cards
type BillingSummary struct {
	TotalRevenue       SummaryValue `json:"totalRevenue"`
	PendingPayments    SummaryValue `json:"pendingPayments"`
	RecentTransactions SummaryValue `json:"recentTransactions"`
	FailedPayments     SummaryValue `json:"failedPayments"`
}

// RevenueOverview is a chart-ready revenue series
type RevenueOverview struct {
	Labels     []string `json:"labels"`
	SeriesData []string `json:"seriesData"`
}
