package service

import (
	"context"
	"testing"

	"buildflow/internal/model"
	"buildflow/internal/repository"
	"buildflow/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTenantService(t *testing.T) (TenantService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Tenant{}, &model.User{}))

	svc := NewTenantService(
		repository.NewTenantRepository(db),
		repository.NewUserRepository(db),
		repository.NewTransactionManager(db),
	)
	return svc, db
}

func TestRegisterTenantCreatesOwner(t *testing.T) {
	svc, db := newTenantService(t)

	resp, err := svc.RegisterTenant(context.Background(), RegisterTenantRequest{
		Name:          "Nordic Builds",
		Slug:          "nordic-builds",
		Email:         "hello@nordic.test",
		OwnerName:     "Sam Okafor",
		OwnerEmail:    "sam@nordic.test",
		OwnerPassword: "supersecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "nordic-builds", resp.Slug)
	assert.Equal(t, model.PlanStarter, resp.Plan)

	var owner model.User
	require.NoError(t, db.First(&owner, "email = ?", "sam@nordic.test").Error)
	assert.Equal(t, model.RoleOwner, owner.Role)
	assert.Equal(t, resp.ID, owner.TenantID.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.Password), []byte("supersecret1")))
}

func TestRegisterTenantValidatesSlug(t *testing.T) {
	svc, _ := newTenantService(t)

	for _, slug := range []string{"Has Spaces", "UPPER", "trailing-", "-leading", "sym!bols"} {
		_, err := svc.RegisterTenant(context.Background(), RegisterTenantRequest{
			Name: "X", Slug: slug, Email: "x@x.test",
			OwnerName: "X", OwnerEmail: "x@x.test", OwnerPassword: "password123",
		})
		var vErr *apperr.ValidationError
		require.ErrorAs(t, err, &vErr, "slug %q should be rejected", slug)
		assert.Equal(t, "slug", vErr.Field)
	}
}

func TestRegisterTenantDuplicateSlugConflicts(t *testing.T) {
	svc, db := newTenantService(t)
	ctx := context.Background()

	req := RegisterTenantRequest{
		Name: "First", Slug: "taken", Email: "a@a.test",
		OwnerName: "A", OwnerEmail: "a@a.test", OwnerPassword: "password123",
	}
	_, err := svc.RegisterTenant(ctx, req)
	require.NoError(t, err)

	req.Name = "Second"
	req.OwnerEmail = "b@b.test"
	_, err = svc.RegisterTenant(ctx, req)
	assert.True(t, apperr.IsConflict(err))

	// No half-registered second tenant
	var count int64
	db.Model(&model.Tenant{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
