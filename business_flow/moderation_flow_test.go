package businessflow

import (
	"bytes"
	"context"
	"testing"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestModerationTransitionTable drives every (from, to) pair through the
// flow, including self-pairs, and checks the archive timestamp bookkeeping.
func TestModerationTransitionTable(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	author := env.mustUser(t, models.RoleUser)

	for _, from := range models.AllObjectStatuses {
		for _, to := range models.AllObjectStatuses {
			t.Run(from.String()+" to "+to.String(), func(t *testing.T) {
				object := env.mustObject(t, author.ID, from)

				resp, err := env.moderationFlow.Transition(ctx, callerFor(admin), object.UUID, to)
				if !from.CanTransitionTo(to) {
					assert.True(t, IsInvalidTransition(err), "expected invalid transition, got: %v", err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, to.String(), resp.Object.Status)

				stored, err := env.objectRepo.ByUUID(ctx, object.UUID)
				require.NoError(t, err)
				assert.Equal(t, to, stored.Status)
				if to == models.ObjectStatusArchived {
					assert.NotNil(t, stored.ArchivedAt)
				} else {
					assert.Nil(t, stored.ArchivedAt)
				}
			})
		}
	}
}

func TestTransitionRequiresAdmin(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, models.RoleUser)
	object := env.mustObject(t, user.ID, models.ObjectStatusPending)

	_, err := env.moderationFlow.Transition(ctx, callerFor(user), object.UUID, models.ObjectStatusApproved)
	assert.True(t, IsForbidden(err))

	_, err = env.moderationFlow.Transition(ctx, GuestCaller(), object.UUID, models.ObjectStatusApproved)
	assert.True(t, IsForbidden(err))
}

func TestTransitionRejectsBadInput(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)

	_, err := env.moderationFlow.Transition(ctx, callerFor(admin), uuid.New(), models.ObjectStatusApproved)
	assert.True(t, IsObjectNotFound(err))

	author := env.mustUser(t, models.RoleUser)
	object := env.mustObject(t, author.ID, models.ObjectStatusPending)

	_, err = env.moderationFlow.Transition(ctx, callerFor(admin), object.UUID, models.ObjectStatus("bogus"))
	assert.True(t, IsValidation(err))
}

func TestDeleteObjectSoftArchivesByDefault(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	author := env.mustUser(t, models.RoleUser)
	object := env.mustObject(t, author.ID, models.ObjectStatusApproved)

	require.NoError(t, env.moderationFlow.DeleteObject(ctx, callerFor(admin), object.UUID))

	stored, err := env.objectRepo.ByUUID(ctx, object.UUID)
	require.NoError(t, err)
	require.NotNil(t, stored, "soft delete must keep the row")
	assert.Equal(t, models.ObjectStatusArchived, stored.Status)
	assert.NotNil(t, stored.ArchivedAt)

	// Deleting an already archived object is a no-op
	require.NoError(t, env.moderationFlow.DeleteObject(ctx, callerFor(admin), object.UUID))

	assert.True(t, IsForbidden(env.moderationFlow.DeleteObject(ctx, callerFor(author), object.UUID)))
	assert.True(t, IsObjectNotFound(env.moderationFlow.DeleteObject(ctx, callerFor(admin), uuid.New())))
}

func TestDeleteObjectHardDelete(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	hardDeleteFlow := NewModerationFlow(env.objectRepo, env.cache, true, env.db.DB)

	admin := env.mustUser(t, models.RoleAdmin)
	author := env.mustUser(t, models.RoleUser)
	tag := env.mustTag(t, "Doomed")
	object := env.mustObject(t, author.ID, models.ObjectStatusApproved, *tag)

	require.NoError(t, hardDeleteFlow.DeleteObject(ctx, callerFor(admin), object.UUID))

	stored, err := env.objectRepo.ByUUID(ctx, object.UUID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// The tag itself survives the object
	kept, err := env.tagRepo.ByID(ctx, tag.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestExportObjectsExcel(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	author := env.mustUser(t, models.RoleUser)
	tag := env.mustTag(t, "Export")
	env.mustObject(t, author.ID, models.ObjectStatusApproved, *tag)
	env.mustObject(t, author.ID, models.ObjectStatusPending)

	_, _, err := env.moderationFlow.ExportObjectsExcel(ctx, callerFor(author))
	assert.True(t, IsForbidden(err))

	filename, payload, err := env.moderationFlow.ExportObjectsExcel(ctx, callerFor(admin))
	require.NoError(t, err)
	assert.Equal(t, "cultural_objects.xlsx", filename)
	require.NotEmpty(t, payload)

	xl, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows("objects")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two objects
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "status", rows[0][3])
}
