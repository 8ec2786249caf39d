package businessflow

import (
	"context"
	"testing"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTagRequiresAdmin(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, models.RoleUser)
	req := &dto.CreateTagRequest{Name: "Castle"}

	_, err := env.tagFlow.CreateTag(ctx, callerFor(user), req)
	assert.True(t, IsForbidden(err))

	_, err = env.tagFlow.CreateTag(ctx, GuestCaller(), req)
	assert.True(t, IsForbidden(err))
}

func TestCreateTagDerivesSlug(t *testing.T) {
	env := newFlowEnv(t)

	admin := env.mustUser(t, models.RoleAdmin)

	resp, err := env.tagFlow.CreateTag(context.Background(), callerFor(admin), &dto.CreateTagRequest{
		Name: "Old Town Hall",
		Icon: "🏛️",
	})
	require.NoError(t, err)
	assert.Equal(t, "Old Town Hall", resp.Tag.Name)
	assert.Equal(t, "old-town-hall", resp.Tag.Slug)
	assert.Equal(t, "🏛️", resp.Tag.Icon)
}

// TestCreateTagCaseInsensitiveConflict checks that labels differing only by
// case collide
func TestCreateTagCaseInsensitiveConflict(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	caller := callerFor(admin)

	_, err := env.tagFlow.CreateTag(ctx, caller, &dto.CreateTagRequest{Name: "Castle"})
	require.NoError(t, err)

	for _, name := range []string{"Castle", "castle", "CASTLE", "  castle  "} {
		_, err = env.tagFlow.CreateTag(ctx, caller, &dto.CreateTagRequest{Name: name})
		assert.True(t, IsTagConflict(err), "name %q should collide", name)
	}

	// A genuinely different label is fine
	_, err = env.tagFlow.CreateTag(ctx, caller, &dto.CreateTagRequest{Name: "Castle Ruins"})
	assert.NoError(t, err)
}

func TestCreateTagValidation(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)

	_, err := env.tagFlow.CreateTag(ctx, callerFor(admin), &dto.CreateTagRequest{Name: "   "})
	assert.True(t, IsValidation(err))

	long := make([]byte, utils.MaxTagNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = env.tagFlow.CreateTag(ctx, callerFor(admin), &dto.CreateTagRequest{Name: string(long)})
	assert.True(t, IsValidation(err))
}

func TestUpdateTag(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	user := env.mustUser(t, models.RoleUser)
	caller := callerFor(admin)

	church := env.mustTag(t, "Church")
	chapel := env.mustTag(t, "Chapel")

	t.Run("requires admin", func(t *testing.T) {
		name := "Cathedral"
		_, err := env.tagFlow.UpdateTag(ctx, callerFor(user), church.ID, &dto.UpdateTagRequest{Name: &name})
		assert.True(t, IsForbidden(err))
	})

	t.Run("unknown tag", func(t *testing.T) {
		name := "Cathedral"
		_, err := env.tagFlow.UpdateTag(ctx, caller, 99999, &dto.UpdateTagRequest{Name: &name})
		assert.True(t, IsTagNotFound(err))
	})

	t.Run("rename onto another label collides case-insensitively", func(t *testing.T) {
		name := "chapel"
		_, err := env.tagFlow.UpdateTag(ctx, caller, church.ID, &dto.UpdateTagRequest{Name: &name})
		assert.True(t, IsTagConflict(err))
	})

	t.Run("recasing a tag's own label is allowed", func(t *testing.T) {
		name := "CHURCH"
		resp, err := env.tagFlow.UpdateTag(ctx, caller, church.ID, &dto.UpdateTagRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "CHURCH", resp.Tag.Name)
		assert.Equal(t, "church", resp.Tag.Slug)
	})

	t.Run("rename updates slug", func(t *testing.T) {
		name := "Wooden Church"
		icon := "⛪"
		resp, err := env.tagFlow.UpdateTag(ctx, caller, chapel.ID, &dto.UpdateTagRequest{Name: &name, Icon: &icon})
		require.NoError(t, err)
		assert.Equal(t, "wooden-church", resp.Tag.Slug)
		assert.Equal(t, "⛪", resp.Tag.Icon)
	})
}

// TestDeleteTagDetachesObjects checks that deleting a tag removes the
// association but leaves the objects themselves untouched
func TestDeleteTagDetachesObjects(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	author := env.mustUser(t, models.RoleUser)

	doomed := env.mustTag(t, "Doomed")
	kept := env.mustTag(t, "Kept")
	object := env.mustObject(t, author.ID, models.ObjectStatusApproved, *doomed, *kept)

	assert.True(t, IsForbidden(env.tagFlow.DeleteTag(ctx, callerFor(author), doomed.ID)))
	assert.True(t, IsTagNotFound(env.tagFlow.DeleteTag(ctx, callerFor(admin), 99999)))

	require.NoError(t, env.tagFlow.DeleteTag(ctx, callerFor(admin), doomed.ID))

	gone, err := env.tagRepo.ByID(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	stored, err := env.objectRepo.ByUUID(ctx, object.UUID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.ObjectStatusApproved, stored.Status)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, "Kept", stored.Tags[0].Name)
}

func TestListTagsOrderedByName(t *testing.T) {
	env := newFlowEnv(t)

	env.mustTag(t, "Windmill")
	env.mustTag(t, "Abbey")
	env.mustTag(t, "Manor")

	resp, err := env.tagFlow.ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "Abbey", resp.Items[0].Name)
	assert.Equal(t, "Manor", resp.Items[1].Name)
	assert.Equal(t, "Windmill", resp.Items[2].Name)
}
