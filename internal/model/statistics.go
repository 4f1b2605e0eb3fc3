package model

import "time"

// QuoteStatusCount is one row of the per-status breakdown.
type QuoteStatusCount struct {
	Status QuoteStatus `json:"status"`
	Count  int64       `json:"count"`
}

// QuoteAnalyticsResponse is the reporting payload for a tenant's quotes.
// Conversion rate = accepted / (sent + viewed + accepted + rejected) * 100,
// 2 decimal places, 0 when nothing has been dispatched yet.
type QuoteAnalyticsResponse struct {
	TotalQuotes        int64              `json:"total_quotes"`
	StatusBreakdown    []QuoteStatusCount `json:"status_breakdown"`
	ConversionRate     float64            `json:"conversion_rate"`
	TotalAcceptedValue string             `json:"total_accepted_value"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// ExpiringQuote is one entry of the expiring-soon report.
type ExpiringQuote struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	ClientName  string      `json:"client_name"`
	Status      QuoteStatus `json:"status"`
	FinalAmount string      `json:"final_amount"`
	ValidUntil  string      `json:"valid_until"`
	DaysLeft    int         `json:"days_left"`
}
