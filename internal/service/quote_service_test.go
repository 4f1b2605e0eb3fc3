package service

import (
	"context"
	"testing"
	"time"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturedEvents struct {
	events []QuoteEvent
}

func (c *capturedEvents) BroadcastJSON(v interface{}) {
	if e, ok := v.(QuoteEvent); ok {
		c.events = append(c.events, e)
	}
}

type quoteFixture struct {
	db       *gorm.DB
	svc      *quoteService
	events   *capturedEvents
	tenantID uuid.UUID
	clientID uuid.UUID
	actorID  string
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled :memory: sqlite hands each connection its own database; pin
	// the pool to one connection so every query sees the same schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.Client{},
		&model.Project{},
		&model.Quote{},
		&model.QuoteTemplate{},
		&model.AuditLog{},
	))

	tenant := model.Tenant{Name: "Acme Builders", Slug: "acme", Email: "owner@acme.test"}
	require.NoError(t, db.Create(&tenant).Error)

	client := model.Client{TenantID: tenant.ID, Name: "Jordan Reyes", Type: model.ClientTypeIndividual}
	require.NoError(t, db.Create(&client).Error)

	events := &capturedEvents{}
	svc := NewQuoteService(
		repository.NewQuoteRepository(db),
		repository.NewProjectRepository(db),
		repository.NewClientRepository(db),
		repository.NewTemplateRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		events,
	).(*quoteService)

	return &quoteFixture{
		db:       db,
		svc:      svc,
		events:   events,
		tenantID: tenant.ID,
		clientID: client.ID,
		actorID:  uuid.New().String(),
	}
}

func (f *quoteFixture) createQuote(t *testing.T, req CreateQuoteRequest) QuoteResponse {
	t.Helper()
	if req.ClientID == "" {
		req.ClientID = f.clientID.String()
	}
	if req.Type == "" {
		req.Type = model.QuoteTypeConstruction
	}
	if req.Title == "" {
		req.Title = "Kitchen renovation"
	}
	resp, err := f.svc.CreateQuote(context.Background(), f.tenantID, f.actorID, req)
	require.NoError(t, err)
	return resp
}

func (f *quoteFixture) loadQuote(t *testing.T, id string) model.Quote {
	t.Helper()
	var q model.Quote
	require.NoError(t, f.db.First(&q, "id = ?", id).Error)
	return q
}

func TestCreateQuoteComputesDerivedAmounts(t *testing.T) {
	f := newQuoteFixture(t)

	resp := f.createQuote(t, CreateQuoteRequest{
		TotalAmount:    "1000",
		DiscountAmount: "100",
		TaxRate:        "10",
	})

	assert.Equal(t, "1000.00", resp.TotalAmount)
	assert.Equal(t, "100.00", resp.DiscountAmount)
	assert.Equal(t, "90.00", resp.TaxAmount)
	assert.Equal(t, "990.00", resp.FinalAmount)
	assert.Equal(t, string(model.QuoteStatusDraft), resp.Status)
	assert.Nil(t, resp.ProjectID)

	// 30-day default validity
	wantValidUntil := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	assert.Equal(t, wantValidUntil, resp.ValidUntil)

	// Creation writes an audit row
	var count int64
	f.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionCreateQuote).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateQuoteRejectsBadInputs(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		req   CreateQuoteRequest
		field string
	}{
		{"discount exceeds total", CreateQuoteRequest{TotalAmount: "100", DiscountAmount: "150"}, "discount_amount"},
		{"negative total", CreateQuoteRequest{TotalAmount: "-5"}, "total_amount"},
		{"tax rate above 100", CreateQuoteRequest{TotalAmount: "100", TaxRate: "101"}, "tax_rate"},
		{"malformed amount", CreateQuoteRequest{TotalAmount: "abc"}, "total_amount"},
		{"bad date", CreateQuoteRequest{TotalAmount: "100", ValidUntil: "31-12-2026"}, "valid_until"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			req.ClientID = f.clientID.String()
			req.Type = model.QuoteTypeDesign
			req.Title = "T"
			_, err := f.svc.CreateQuote(ctx, f.tenantID, f.actorID, req)
			var vErr *apperr.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	_, err := f.svc.CreateQuote(ctx, f.tenantID, f.actorID, CreateQuoteRequest{
		ClientID: uuid.New().String(), Type: model.QuoteTypeDesign, Title: "T", TotalAmount: "100",
	})
	assert.True(t, apperr.IsNotFound(err), "unknown client should be a not-found error")
}

func TestCreateQuoteFromTemplate(t *testing.T) {
	f := newQuoteFixture(t)

	tpl := model.QuoteTemplate{
		TenantID:        f.tenantID,
		Name:            "Standard build",
		Type:            model.QuoteTypeConstruction,
		Title:           "Standard construction package",
		Terms:           "Net 30",
		DefaultTaxRate:  decimal.NewFromInt(10),
		DefaultDiscount: decimal.Zero,
		ValidityDays:    14,
	}
	require.NoError(t, f.db.Create(&tpl).Error)

	resp := f.createQuote(t, CreateQuoteRequest{
		TemplateID:  tpl.ID.String(),
		Title:       "Custom title wins", // explicit field beats the template
		TotalAmount: "500",
	})

	assert.Equal(t, "Custom title wins", resp.Title)
	assert.Equal(t, "Net 30", resp.Terms)
	assert.Equal(t, "10.00", resp.TaxRate)
	assert.Equal(t, "50.00", resp.TaxAmount)
	assert.Equal(t, "550.00", resp.FinalAmount)
	assert.Equal(t, time.Now().AddDate(0, 0, 14).Format("2006-01-02"), resp.ValidUntil)
}

func TestUpdateQuoteRecomputesAndGuardsStatus(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "1000", DiscountAmount: "100", TaxRate: "10"})

	newDiscount := "200"
	updated, err := f.svc.UpdateQuote(ctx, f.tenantID, created.ID, f.actorID, UpdateQuoteRequest{DiscountAmount: &newDiscount})
	require.NoError(t, err)
	assert.Equal(t, "80.00", updated.TaxAmount)
	assert.Equal(t, "880.00", updated.FinalAmount)

	// Once sent, the quote is locked against edits
	_, err = f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	title := "new title"
	_, err = f.svc.UpdateQuote(ctx, f.tenantID, created.ID, f.actorID, UpdateQuoteRequest{Title: &title})
	assert.True(t, apperr.IsConflict(err))
}

func TestQuoteLifecycleHappyPath(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "1000", TaxRate: "10"})

	sent, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)
	assert.Equal(t, string(model.QuoteStatusSent), sent.Status)

	viewed, err := f.svc.MarkQuoteViewed(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)
	assert.Equal(t, string(model.QuoteStatusViewed), viewed.Status)

	accepted, err := f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)
	assert.Equal(t, string(model.QuoteStatusAccepted), accepted.Status)
	require.NotNil(t, accepted.ProjectID)

	// Every transition broadcast an event
	require.Len(t, f.events.events, 3)
	assert.Equal(t, string(model.QuoteStatusViewed), f.events.events[2].FromStatus)
	assert.Equal(t, string(model.QuoteStatusAccepted), f.events.events[2].ToStatus)
	assert.Equal(t, *accepted.ProjectID, f.events.events[2].ProjectID)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})

	// DRAFT cannot be accepted, rejected, or viewed
	_, err := f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	assert.True(t, apperr.IsIllegalTransition(err))
	_, err = f.svc.RejectQuote(ctx, f.tenantID, created.ID, f.actorID, "too costly")
	assert.True(t, apperr.IsIllegalTransition(err))
	_, err = f.svc.MarkQuoteViewed(ctx, f.tenantID, created.ID, f.actorID)
	assert.True(t, apperr.IsIllegalTransition(err))

	// Terminal states accept nothing further
	_, err = f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)
	_, err = f.svc.RejectQuote(ctx, f.tenantID, created.ID, f.actorID, "went elsewhere")
	require.NoError(t, err)
	_, err = f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	assert.True(t, apperr.IsIllegalTransition(err))
	_, err = f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	assert.True(t, apperr.IsIllegalTransition(err))
}

func TestRejectQuoteRequiresReason(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	_, err = f.svc.RejectQuote(ctx, f.tenantID, created.ID, f.actorID, "")
	var vErr *apperr.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "rejection_reason", vErr.Field)

	rejected, err := f.svc.RejectQuote(ctx, f.tenantID, created.ID, f.actorID, "price too high")
	require.NoError(t, err)
	assert.Equal(t, "price too high", rejected.RejectionReason)
}

func TestAcceptQuoteCreatesLinkedProject(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "1000", DiscountAmount: "100", TaxRate: "10"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	accepted, err := f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)
	require.NotNil(t, accepted.ProjectID)

	var project model.Project
	require.NoError(t, f.db.First(&project, "id = ?", *accepted.ProjectID).Error)
	assert.Equal(t, f.tenantID, project.TenantID)
	assert.Equal(t, f.clientID, project.ClientID)
	assert.Equal(t, "Kitchen renovation", project.Name)
	assert.Equal(t, model.ProjectStatusPlanning, project.Status)
	assert.True(t, project.Budget.Equal(decimal.RequireFromString("990")), "budget seeded from final amount, got %s", project.Budget)
	require.NotNil(t, project.SourceQuoteID)
	assert.Equal(t, created.ID, project.SourceQuoteID.String())

	// Conversion writes both accept and convert audit rows
	var count int64
	f.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionConvertQuote).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAcceptQuoteWithExistingProjectDoesNotCreateAnother(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	project := model.Project{TenantID: f.tenantID, ClientID: f.clientID, Name: "Existing site", Status: model.ProjectStatusPlanning}
	require.NoError(t, f.db.Create(&project).Error)

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100", ProjectID: project.ID.String()})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	accepted, err := f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)
	require.NotNil(t, accepted.ProjectID)
	assert.Equal(t, project.ID.String(), *accepted.ProjectID)

	var count int64
	f.db.Model(&model.Project{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAcceptQuoteRollsBackWhenProjectCreationFails(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "500"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	// Sabotage project creation so the conversion half of the transaction fails
	require.NoError(t, f.db.Migrator().DropTable(&model.Project{}))

	_, err = f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.Error(t, err)
	assert.True(t, apperr.IsPersistence(err))

	// The status flip rolled back with it
	q := f.loadQuote(t, created.ID)
	assert.Equal(t, model.QuoteStatusSent, q.Status)
	assert.Nil(t, q.ProjectID)
}

func TestExpiredQuoteCannotBeAccepted(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	// Move the clock past the validity window instead of mutating the row
	f.svc.now = func() time.Time { return time.Now().AddDate(0, 0, 45) }

	_, err = f.svc.AcceptQuote(ctx, f.tenantID, created.ID, f.actorID)
	var tErr *apperr.IllegalTransitionError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, string(model.QuoteStatusExpired), tErr.From)

	_, err = f.svc.RejectQuote(ctx, f.tenantID, created.ID, f.actorID, "late anyway")
	assert.True(t, apperr.IsIllegalTransition(err))

	// The stored status is untouched; expiry is reported, not written
	q := f.loadQuote(t, created.ID)
	assert.Equal(t, model.QuoteStatusSent, q.Status)
	resp, err := f.svc.GetQuote(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.QuoteStatusExpired), resp.Status)
}

func TestUpdateStatusFromIsOptimistic(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	repo := repository.NewQuoteRepository(f.db)
	q := f.loadQuote(t, created.ID)

	// First writer wins
	q.Status = model.QuoteStatusAccepted
	rows, err := repo.UpdateStatusFrom(ctx, &q, model.QuoteStatusSent)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	// A second writer holding the stale SENT precondition writes nothing
	stale := q
	stale.Status = model.QuoteStatusRejected
	rows, err = repo.UpdateStatusFrom(ctx, &stale, model.QuoteStatusSent)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	assert.Equal(t, model.QuoteStatusAccepted, f.loadQuote(t, created.ID).Status)
}

func TestDeleteQuoteOnlyWhenDraft(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, created.ID, f.actorID)
	require.NoError(t, err)

	err = f.svc.DeleteQuote(ctx, f.tenantID, created.ID)
	assert.True(t, apperr.IsConflict(err))

	draft := f.createQuote(t, CreateQuoteRequest{TotalAmount: "200"})
	require.NoError(t, f.svc.DeleteQuote(ctx, f.tenantID, draft.ID))
	_, err = f.svc.GetQuote(ctx, f.tenantID, draft.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestQuoteTenantIsolation(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	created := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100"})

	otherTenant := uuid.New()
	_, err := f.svc.GetQuote(ctx, otherTenant, created.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.svc.SendQuote(ctx, otherTenant, created.ID, f.actorID)
	assert.True(t, apperr.IsNotFound(err))

	list, total, err := f.svc.ListQuotes(ctx, otherTenant, QuoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestListQuotesFilters(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	q1 := f.createQuote(t, CreateQuoteRequest{TotalAmount: "100", Type: model.QuoteTypeDesign, Title: "Design A"})
	f.createQuote(t, CreateQuoteRequest{TotalAmount: "200", Type: model.QuoteTypeConstruction, Title: "Build B"})
	_, err := f.svc.SendQuote(ctx, f.tenantID, q1.ID, f.actorID)
	require.NoError(t, err)

	byStatus, total, err := f.svc.ListQuotes(ctx, f.tenantID, QuoteFilter{Status: string(model.QuoteStatusSent)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Design A", byStatus[0].Title)

	byType, total, err := f.svc.ListQuotes(ctx, f.tenantID, QuoteFilter{Type: model.QuoteTypeConstruction})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Build B", byType[0].Title)
}
