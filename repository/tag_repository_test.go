package repository

import (
	"context"
	"testing"

	"github.com/culturemap-ua/culturemap-api/models"
	apptesting "github.com/culturemap-ua/culturemap-api/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTagRepo(t *testing.T) TagRepository {
	t.Helper()
	tdb, err := apptesting.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })
	return NewTagRepository(tdb.DB)
}

func TestTagSaveRejectsCaseVariantDuplicate(t *testing.T) {
	repo := setupTagRepo(t)
	ctx := context.Background()

	first := &models.Tag{Name: "Castle", Slug: "castle"}
	require.NoError(t, repo.Save(ctx, first))

	// The unique index is on the folded label, so a recased duplicate
	// must be rejected even without a prior lookup.
	dup := &models.Tag{Name: "castle", Slug: "castle-variant"}
	err := repo.Save(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTag)

	count, err := repo.Count(ctx, models.TagFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTagUpdateRejectsCaseVariantDuplicate(t *testing.T) {
	repo := setupTagRepo(t)
	ctx := context.Background()

	castle := &models.Tag{Name: "Castle", Slug: "castle"}
	require.NoError(t, repo.Save(ctx, castle))
	church := &models.Tag{Name: "Church", Slug: "church"}
	require.NoError(t, repo.Save(ctx, church))

	church.Name = "CASTLE"
	err := repo.Update(ctx, church)
	assert.ErrorIs(t, err, ErrDuplicateTag)
}

func TestTagByNameFoldMatchesAnyCase(t *testing.T) {
	repo := setupTagRepo(t)
	ctx := context.Background()

	tag := &models.Tag{Name: "Fortress", Slug: "fortress"}
	require.NoError(t, repo.Save(ctx, tag))

	for _, name := range []string{"fortress", "FORTRESS", "Fortress"} {
		found, err := repo.ByNameFold(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, found, "lookup for %q", name)
		assert.Equal(t, tag.ID, found.ID)
	}

	missing, err := repo.ByNameFold(ctx, "Palace")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
