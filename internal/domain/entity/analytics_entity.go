package entity

// PublisherBreakdown aggregates articles per embedded publisher name.
type PublisherBreakdown struct {
	Name          string `json:"name"`
	TotalArticles int64  `json:"totalArticles"`
	TotalViews    int64  `json:"totalViews"`
}

// UserCounts splits users by evaluated premium state.
type UserCounts struct {
	Premium    int64 `json:"premium"`
	NonPremium int64 `json:"nonPremium"`
}

// AnalyticsReport is a point-in-time dashboard snapshot. Its figures come from
// independent queries and are not mutually consistent.
type AnalyticsReport struct {
	Articles             int64                `json:"articles"`
	Users                int64                `json:"users"`
	Premium              int64                `json:"premium"`
	NonPremium           int64                `json:"nonPremium"`
	Publishers           int64                `json:"publishers"`
	Subscriptions        int64                `json:"subscriptions"`
	Revenue              float64              `json:"payment"`
	ArticlesPerPublisher []PublisherBreakdown `json:"articlesPerPublisher"`
}
