package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanfcorp/acp-market/internal/models"
	"github.com/fanfcorp/acp-market/internal/utils"
)

func TestWaitlistService_Join(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_waitlist_join", "waitlist")
	svc := NewWaitlistService(db)
	ctx := context.Background()

	entry, created, err := svc.Join(ctx, " Dev@Example.com ", "crewai, langchain", true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "dev@example.com", entry.Email)
	assert.Equal(t, "crewai, langchain", entry.Tools)
	assert.True(t, entry.Consent)

	// Signing up again updates the same entry.
	again, created, err := svc.Join(ctx, "DEV@example.com", "autogen", false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, again.ID)
	assert.Equal(t, "autogen", again.Tools)
	assert.False(t, again.Consent)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, _, err = svc.Join(ctx, "not-an-email", "", false)
	assert.True(t, IsValidation(err))
	_, _, err = svc.Join(ctx, "  ", "", false)
	assert.True(t, IsValidation(err))
}

func TestServiceRequestService_Create(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_service_requests", "service_requests")
	svc := NewServiceRequestService(db)
	ctx := context.Background()

	input := ServiceRequestInput{
		Name:        "Jane Dev",
		Email:       "Jane@Example.com",
		Company:     "Acme",
		ProjectType: "custom-agent",
		Description: "Need an ACP integration for our storefront",
		Budget:      "$10k - $25k",
	}
	request, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", request.Email)
	assert.Equal(t, "new", request.Status)
	assert.NotEmpty(t, request.ID)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, request.ID, listed[0].ID)

	for _, mutate := range []func(*ServiceRequestInput){
		func(in *ServiceRequestInput) { in.Name = "" },
		func(in *ServiceRequestInput) { in.Email = "bogus" },
		func(in *ServiceRequestInput) { in.ProjectType = " " },
		func(in *ServiceRequestInput) { in.Description = "" },
	} {
		bad := input
		mutate(&bad)
		_, err := svc.Create(ctx, bad)
		assert.True(t, IsValidation(err))
	}
}

func TestCategoryService_Upsert(t *testing.T) {
	db := utils.SetupTestDB(t, "testdb_categories", "categories")
	svc := NewCategoryService(db)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, &models.Category{Slug: "commerce", Name: "Commerce", SortOrder: 2})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// Re-seeding refreshes metadata without minting a new id.
	second, err := svc.Upsert(ctx, &models.Category{Slug: "commerce", Name: "Commerce & Payments", SortOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Commerce & Payments", second.Name)

	_, err = svc.Upsert(ctx, &models.Category{Slug: "security", Name: "Security", SortOrder: 0})
	require.NoError(t, err)

	// List follows the display sort order.
	categories, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "security", categories[0].Slug)
	assert.Equal(t, "commerce", categories[1].Slug)

	found, err := svc.FindBySlug(ctx, "commerce")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = svc.FindBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
