package service

import (
	"context"
	"testing"
	"time"

	"buildflow/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusCount(t *testing.T, breakdown []model.QuoteStatusCount, status model.QuoteStatus) int64 {
	t.Helper()
	for _, entry := range breakdown {
		if entry.Status == status {
			return entry.Count
		}
	}
	return 0
}

func TestGetQuoteAnalyticsEmptyTenant(t *testing.T) {
	f := newQuoteFixture(t)

	svc := NewQuoteAnalyticsService(f.db)
	stats, err := svc.GetQuoteAnalytics(context.Background(), f.tenantID)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalQuotes)
	assert.Empty(t, stats.StatusBreakdown)
	assert.Zero(t, stats.ConversionRate, "no dispatched quotes must give rate 0, not a division error")
	value, parseErr := decimal.NewFromString(stats.TotalAcceptedValue)
	require.NoError(t, parseErr)
	assert.True(t, value.IsZero())
}

func TestGetQuoteAnalyticsCountsAndConversionRate(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	// 1 draft, 1 sent, 1 rejected, 2 accepted -> 4 dispatched, rate 50%
	f.createQuote(t, CreateQuoteRequest{TotalAmount: "50", Title: "Draft only"})

	sent := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100", Title: "Sent"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, sent.ID, f.actorID)
	require.NoError(t, err)

	rejected := f.createQuote(t, CreateQuoteRequest{TotalAmount: "200", Title: "Rejected"})
	_, err = f.svc.SendQuote(ctx, f.tenantID, rejected.ID, f.actorID)
	require.NoError(t, err)
	_, err = f.svc.RejectQuote(ctx, f.tenantID, rejected.ID, f.actorID, "too expensive")
	require.NoError(t, err)

	for _, amount := range []string{"300", "690"} {
		q := f.createQuote(t, CreateQuoteRequest{TotalAmount: amount, Title: "Won " + amount})
		_, err = f.svc.SendQuote(ctx, f.tenantID, q.ID, f.actorID)
		require.NoError(t, err)
		_, err = f.svc.AcceptQuote(ctx, f.tenantID, q.ID, f.actorID)
		require.NoError(t, err)
	}

	svc := NewQuoteAnalyticsService(f.db)
	stats, err := svc.GetQuoteAnalytics(ctx, f.tenantID)
	require.NoError(t, err)

	assert.EqualValues(t, 5, stats.TotalQuotes)
	assert.EqualValues(t, 1, statusCount(t, stats.StatusBreakdown, model.QuoteStatusDraft))
	assert.EqualValues(t, 1, statusCount(t, stats.StatusBreakdown, model.QuoteStatusSent))
	assert.EqualValues(t, 1, statusCount(t, stats.StatusBreakdown, model.QuoteStatusRejected))
	assert.EqualValues(t, 2, statusCount(t, stats.StatusBreakdown, model.QuoteStatusAccepted))

	assert.InDelta(t, 50.0, stats.ConversionRate, 0.001)

	value, parseErr := decimal.NewFromString(stats.TotalAcceptedValue)
	require.NoError(t, parseErr)
	assert.True(t, value.Equal(decimal.RequireFromString("990")), "accepted value should sum final amounts, got %s", value)
}

func TestGetQuoteAnalyticsFullConversion(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	q := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, q.ID, f.actorID)
	require.NoError(t, err)
	_, err = f.svc.AcceptQuote(ctx, f.tenantID, q.ID, f.actorID)
	require.NoError(t, err)

	svc := NewQuoteAnalyticsService(f.db)
	stats, err := svc.GetQuoteAnalytics(ctx, f.tenantID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stats.ConversionRate, 0.001)
}

func TestGetExpiringSoon(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	soon := f.createQuote(t, CreateQuoteRequest{
		TotalAmount: "100",
		Title:       "Closing soon",
		ValidUntil:  time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
	})
	_, err := f.svc.SendQuote(ctx, f.tenantID, soon.ID, f.actorID)
	require.NoError(t, err)

	// Far-out quote is not in the window
	f.createQuote(t, CreateQuoteRequest{
		TotalAmount: "200",
		Title:       "Plenty of time",
		ValidUntil:  time.Now().AddDate(0, 0, 60).Format("2006-01-02"),
	})

	// Accepted quotes never show up, regardless of date
	won := f.createQuote(t, CreateQuoteRequest{
		TotalAmount: "300",
		Title:       "Already won",
		ValidUntil:  time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	})
	_, err = f.svc.SendQuote(ctx, f.tenantID, won.ID, f.actorID)
	require.NoError(t, err)
	_, err = f.svc.AcceptQuote(ctx, f.tenantID, won.ID, f.actorID)
	require.NoError(t, err)

	svc := NewQuoteAnalyticsService(f.db)
	expiring, err := svc.GetExpiringSoon(ctx, f.tenantID, 7)
	require.NoError(t, err)

	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID, expiring[0].ID)
	assert.Equal(t, "Closing soon", expiring[0].Title)
	assert.Equal(t, "Jordan Reyes", expiring[0].ClientName)
	assert.LessOrEqual(t, expiring[0].DaysLeft, 3)
	assert.GreaterOrEqual(t, expiring[0].DaysLeft, 2)
}

func TestGetExpiringSoonReportsLapsedQuotes(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	q := f.createQuote(t, CreateQuoteRequest{
		TotalAmount: "100",
		Title:       "Lapsed",
		ValidUntil:  time.Now().AddDate(0, 0, 5).Format("2006-01-02"),
	})
	_, err := f.svc.SendQuote(ctx, f.tenantID, q.ID, f.actorID)
	require.NoError(t, err)

	svc := NewQuoteAnalyticsService(f.db).(*quoteAnalyticsService)
	svc.now = func() time.Time { return time.Now().AddDate(0, 0, 10) }

	expiring, err := svc.GetExpiringSoon(ctx, f.tenantID, 7)
	require.NoError(t, err)
	require.Len(t, expiring, 1)

	// Past the window the quote reports as EXPIRED with negative days left,
	// while its stored status stays SENT
	assert.Equal(t, model.QuoteStatusExpired, expiring[0].Status)
	assert.Negative(t, expiring[0].DaysLeft)
	assert.Equal(t, model.QuoteStatusSent, f.loadQuote(t, q.ID).Status)
}
