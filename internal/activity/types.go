// Package activity serves daily message counts from the evaluation API,
// caching completed periods.
package activity

// MessageCount is the number of messages recorded on one day.
type MessageCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Period is the inclusive date range a response covers.
type Period struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// DailyMessageResponse is the payload returned by the upstream API.
type DailyMessageResponse struct {
	MessageCounts   []MessageCount `json:"messageCounts"`
	TotalMessages   int            `json:"totalMessages"`
	AverageMessages int            `json:"averageMessages"`
	Period          Period         `json:"period"`
}

type upstreamRequest struct {
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	IncludeDetails bool   `json:"includeDetails"`
}
