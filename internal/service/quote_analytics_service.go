package service

import (
	"context"
	"math"
	"time"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteAnalyticsService reads reporting figures over a tenant's quotes. It
// never writes: a quote past its valid_until date is reported as expiring or
// expired without the stored status being touched.
type QuoteAnalyticsService interface {
	GetQuoteAnalytics(ctx context.Context, tenantID uuid.UUID) (model.QuoteAnalyticsResponse, error)
	GetExpiringSoon(ctx context.Context, tenantID uuid.UUID, withinDays int) ([]model.ExpiringQuote, error)
}

type quoteAnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewQuoteAnalyticsService(db *gorm.DB) QuoteAnalyticsService {
	return &quoteAnalyticsService{db: db, now: time.Now}
}

// GetQuoteAnalytics aggregates per-status counts, the conversion rate, and
// the total accepted value. Conversion rate is accepted over everything
// dispatched (sent, viewed, accepted, rejected); with nothing dispatched the
// rate is 0, never a division by zero.
func (s *quoteAnalyticsService) GetQuoteAnalytics(ctx context.Context, tenantID uuid.UUID) (model.QuoteAnalyticsResponse, error) {
	var response model.QuoteAnalyticsResponse
	response.GeneratedAt = s.now()

	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Quote{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return response, err
	}

	var accepted, dispatched int64
	for _, row := range rows {
		status := model.QuoteStatus(row.Status)
		response.TotalQuotes += row.Count
		response.StatusBreakdown = append(response.StatusBreakdown, model.QuoteStatusCount{
			Status: status,
			Count:  row.Count,
		})
		switch status {
		case model.QuoteStatusAccepted:
			accepted += row.Count
			dispatched += row.Count
		case model.QuoteStatusSent, model.QuoteStatusViewed, model.QuoteStatusRejected:
			dispatched += row.Count
		}
	}

	if dispatched > 0 {
		rate := float64(accepted) / float64(dispatched) * 100
		response.ConversionRate = math.Round(rate*100) / 100
	}

	var acceptedValue struct {
		Value string
	}
	err = s.db.WithContext(ctx).Model(&model.Quote{}).
		Select("COALESCE(SUM(final_amount), 0) as value").
		Where("tenant_id = ? AND status = ?", tenantID, model.QuoteStatusAccepted).
		Scan(&acceptedValue).Error
	if err != nil {
		return response, err
	}
	response.TotalAcceptedValue = acceptedValue.Value

	return response, nil
}

// GetExpiringSoon lists quotes whose validity window closes within the given
// number of days and whose status is non-terminal. Rows already past their
// date are included with negative days left; their stored status stays as-is.
func (s *quoteAnalyticsService) GetExpiringSoon(ctx context.Context, tenantID uuid.UUID, withinDays int) ([]model.ExpiringQuote, error) {
	now := s.now()
	cutoff := now.AddDate(0, 0, withinDays)

	var quotes []model.Quote
	err := s.db.WithContext(ctx).
		Preload("Client").
		Where("tenant_id = ? AND status NOT IN ? AND valid_until <= ?",
			tenantID,
			[]model.QuoteStatus{model.QuoteStatusAccepted, model.QuoteStatusRejected, model.QuoteStatusExpired},
			cutoff).
		Order("valid_until asc").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}

	today := now.Truncate(24 * time.Hour)
	result := make([]model.ExpiringQuote, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		entry := model.ExpiringQuote{
			ID:          q.ID.String(),
			Title:       q.Title,
			Status:      q.EffectiveStatus(now),
			FinalAmount: q.FinalAmount.StringFixed(2),
			ValidUntil:  q.ValidUntil.Format("2006-01-02"),
			DaysLeft:    int(q.ValidUntil.Sub(today).Hours() / 24),
		}
		if q.Client != nil {
			entry.ClientName = q.Client.Name
		}
		result = append(result, entry)
	}

	return result, nil
}
