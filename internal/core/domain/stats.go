package domain

// ActivityWindow is a simulated per-user activity figure.
type ActivityWindow struct {
	MinutesFarmed int `json:"minutesFarmed"`
	MntEarned     int `json:"mntEarned"`
	Calls         int `json:"calls"`
}

// ActivityStats groups simulated activity by window.
type ActivityStats struct {
	Today     ActivityWindow `json:"today"`
	ThisWeek  ActivityWindow `json:"thisWeek"`
	ThisMonth ActivityWindow `json:"thisMonth"`
}

// NetworkStats are display-only network figures. Apart from ActiveNodes they
// are simulated and carry no authority.
type NetworkStats struct {
	TotalUsers           int64   `json:"totalUsers"`
	ActiveNodes          int64   `json:"activeNodes"`
	TotalMinutesFarmed   int64   `json:"totalMinutesFarmed"`
	TotalMntDistributed  int64   `json:"totalMntDistributed"`
	NetworkUptime        float64 `json:"networkUptime"`
	AverageRewardPerUser float64 `json:"averageRewardPerUser"`
}

// LicenseBreakdown counts licenses per category.
type LicenseBreakdown struct {
	Switch     int64 `json:"switch"`
	Validation int64 `json:"validation"`
}

// LicenseCounts counts licenses per status.
type LicenseCounts struct {
	Total     int64            `json:"total"`
	Available int64            `json:"available"`
	Generated int64            `json:"generated"`
	Used      int64            `json:"used"`
	Breakdown LicenseBreakdown `json:"breakdown"`
}

// RecentActivity reports allocations over the last day.
type RecentActivity struct {
	RecentGenerations int64 `json:"recentGenerations"`
	Last24Hours       int64 `json:"last24Hours"`
}

// Stats is the aggregate statistics snapshot.
type Stats struct {
	Licenses LicenseCounts  `json:"licenses"`
	Activity RecentActivity `json:"activity"`
	Network  NetworkStats   `json:"network"`
}
