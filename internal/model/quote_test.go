package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{QuoteStatusDraft, QuoteStatusSent, true},
		{QuoteStatusSent, QuoteStatusViewed, true},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusRejected, true},
		{QuoteStatusViewed, QuoteStatusAccepted, true},
		{QuoteStatusViewed, QuoteStatusRejected, true},

		// Skipping SENT entirely is not allowed
		{QuoteStatusDraft, QuoteStatusViewed, false},
		{QuoteStatusDraft, QuoteStatusAccepted, false},
		{QuoteStatusDraft, QuoteStatusRejected, false},

		// No backwards edges
		{QuoteStatusSent, QuoteStatusDraft, false},
		{QuoteStatusViewed, QuoteStatusSent, false},

		// Terminal states have no outgoing edges
		{QuoteStatusAccepted, QuoteStatusRejected, false},
		{QuoteStatusRejected, QuoteStatusAccepted, false},
		{QuoteStatusExpired, QuoteStatusSent, false},
		{QuoteStatusAccepted, QuoteStatusDraft, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestQuoteStatusIsTerminal(t *testing.T) {
	assert.False(t, QuoteStatusDraft.IsTerminal())
	assert.False(t, QuoteStatusSent.IsTerminal())
	assert.False(t, QuoteStatusViewed.IsTerminal())
	assert.True(t, QuoteStatusAccepted.IsTerminal())
	assert.True(t, QuoteStatusRejected.IsTerminal())
	assert.True(t, QuoteStatusExpired.IsTerminal())
}

func TestQuoteIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	q := Quote{Status: QuoteStatusSent, ValidUntil: past}
	assert.True(t, q.IsExpired(now))
	assert.Equal(t, QuoteStatusExpired, q.EffectiveStatus(now))

	q.ValidUntil = future
	assert.False(t, q.IsExpired(now))
	assert.Equal(t, QuoteStatusSent, q.EffectiveStatus(now))

	// A quote valid through today is not expired yet
	q.ValidUntil = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.False(t, q.IsExpired(now))

	// Terminal quotes never flip to expired, however old
	q = Quote{Status: QuoteStatusAccepted, ValidUntil: past}
	assert.False(t, q.IsExpired(now))
	assert.Equal(t, QuoteStatusAccepted, q.EffectiveStatus(now))

	q.Status = QuoteStatusRejected
	assert.False(t, q.IsExpired(now))
}

func TestQuoteGuards(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	future := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	draft := Quote{Status: QuoteStatusDraft, ValidUntil: future, TotalAmount: decimal.NewFromInt(100)}
	assert.True(t, draft.CanBeSent(now))
	assert.False(t, draft.CanBeAccepted(now))
	assert.False(t, draft.CanBeRejected(now))
	assert.False(t, draft.CanBeViewed(now))

	sent := Quote{Status: QuoteStatusSent, ValidUntil: future}
	assert.True(t, sent.CanBeViewed(now))
	assert.True(t, sent.CanBeAccepted(now))
	assert.True(t, sent.CanBeRejected(now))
	assert.False(t, sent.CanBeSent(now))

	viewed := Quote{Status: QuoteStatusViewed, ValidUntil: future}
	assert.True(t, viewed.CanBeAccepted(now))
	assert.True(t, viewed.CanBeRejected(now))
	assert.False(t, viewed.CanBeViewed(now))

	// Expiry blocks every guard even when the stored status allows the edge
	staleSent := Quote{Status: QuoteStatusSent, ValidUntil: past}
	assert.False(t, staleSent.CanBeAccepted(now))
	assert.False(t, staleSent.CanBeRejected(now))
	assert.False(t, staleSent.CanBeViewed(now))
}
