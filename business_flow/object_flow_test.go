package businessflow

import (
	"context"
	"testing"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitRequest(tagIDs ...uint) *dto.SubmitObjectRequest {
	return &dto.SubmitObjectRequest{
		Title:     "Лядівський скельний монастир",
		Latitude:  48.6,
		Longitude: 27.6,
		TagIDs:    tagIDs,
	}
}

func TestSubmitObjectStartsPending(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, models.RoleUser)
	tag := env.mustTag(t, "Monastery")

	resp, err := env.objectFlow.SubmitObject(ctx, callerFor(user), submitRequest(tag.ID), NewClientMetadata("127.0.0.1", "go-test"))
	require.NoError(t, err)

	assert.Equal(t, models.ObjectStatusPending.String(), resp.Object.Status)
	assert.Equal(t, user.ID, resp.Object.AuthorID)
	require.Len(t, resp.Object.Tags, 1)
	assert.Equal(t, tag.Name, resp.Object.Tags[0].Name)
}

func TestSubmitObjectAdminAlsoStartsPending(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	admin := env.mustUser(t, models.RoleAdmin)
	tag := env.mustTag(t, "Fortress")

	resp, err := env.objectFlow.SubmitObject(ctx, callerFor(admin), submitRequest(tag.ID), NewClientMetadata("127.0.0.1", "go-test"))
	require.NoError(t, err)
	assert.Equal(t, models.ObjectStatusPending.String(), resp.Object.Status)
}

func TestSubmitObjectRequiresAccount(t *testing.T) {
	env := newFlowEnv(t)

	tag := env.mustTag(t, "Church")

	_, err := env.objectFlow.SubmitObject(context.Background(), GuestCaller(), submitRequest(tag.ID), NewClientMetadata("127.0.0.1", "go-test"))
	assert.True(t, IsForbidden(err))
}

func TestSubmitObjectValidation(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, models.RoleUser)
	caller := callerFor(user)
	meta := NewClientMetadata("127.0.0.1", "go-test")
	tag := env.mustTag(t, "Palace")

	t.Run("empty title", func(t *testing.T) {
		req := submitRequest(tag.ID)
		req.Title = "   "
		_, err := env.objectFlow.SubmitObject(ctx, caller, req, meta)
		assert.True(t, IsValidation(err))
	})

	t.Run("coordinates outside region", func(t *testing.T) {
		req := submitRequest(tag.ID)
		req.Latitude, req.Longitude = 52.23, 21.01 // Warsaw
		_, err := env.objectFlow.SubmitObject(ctx, caller, req, meta)
		assert.True(t, IsValidation(err))
	})

	t.Run("no tags", func(t *testing.T) {
		_, err := env.objectFlow.SubmitObject(ctx, caller, submitRequest(), meta)
		assert.True(t, IsValidation(err))
	})

	t.Run("too many tags", func(t *testing.T) {
		_, err := env.objectFlow.SubmitObject(ctx, caller, submitRequest(1, 2, 3, 4, 5, 6), meta)
		assert.True(t, IsValidation(err))
	})

	t.Run("duplicate tags", func(t *testing.T) {
		_, err := env.objectFlow.SubmitObject(ctx, caller, submitRequest(tag.ID, tag.ID), meta)
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := env.objectFlow.SubmitObject(ctx, caller, submitRequest(tag.ID, 99999), meta)
		assert.True(t, IsTagNotFound(err))
	})
}

// TestEditObjectPermissions covers the full edit matrix: the author may edit
// while pending, admins may edit in any state, everyone else is refused.
func TestEditObjectPermissions(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	author := env.mustUser(t, models.RoleUser)
	other := env.mustUser(t, models.RoleUser)
	admin := env.mustUser(t, models.RoleAdmin)

	newTitle := "Updated title"
	edit := &dto.EditObjectRequest{Title: &newTitle}

	tests := []struct {
		name    string
		caller  Caller
		status  models.ObjectStatus
		wantErr func(error) bool
	}{
		{"author edits pending", callerFor(author), models.ObjectStatusPending, nil},
		{"author edits approved", callerFor(author), models.ObjectStatusApproved, IsForbidden},
		{"author edits archived", callerFor(author), models.ObjectStatusArchived, IsForbidden},
		{"other user edits pending", callerFor(other), models.ObjectStatusPending, IsForbidden},
		{"admin edits pending", callerFor(admin), models.ObjectStatusPending, nil},
		{"admin edits approved", callerFor(admin), models.ObjectStatusApproved, nil},
		{"admin edits archived", callerFor(admin), models.ObjectStatusArchived, nil},
		{"guest edits pending", GuestCaller(), models.ObjectStatusPending, IsForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			object := env.mustObject(t, author.ID, tt.status)

			resp, err := env.objectFlow.EditObject(ctx, tt.caller, object.UUID, edit)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, newTitle, resp.Object.Title)
		})
	}
}

func TestEditObjectNotFound(t *testing.T) {
	env := newFlowEnv(t)

	admin := env.mustUser(t, models.RoleAdmin)
	title := "x"

	_, err := env.objectFlow.EditObject(context.Background(), callerFor(admin), uuid.New(), &dto.EditObjectRequest{Title: &title})
	assert.True(t, IsObjectNotFound(err))
}

func TestEditObjectCoordinatesAndTags(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	author := env.mustUser(t, models.RoleUser)
	oldTag := env.mustTag(t, "Theatre")
	newTag := env.mustTag(t, "Park")
	object := env.mustObject(t, author.ID, models.ObjectStatusPending, *oldTag)

	t.Run("latitude without longitude", func(t *testing.T) {
		lat := 50.0
		_, err := env.objectFlow.EditObject(ctx, callerFor(author), object.UUID, &dto.EditObjectRequest{Latitude: &lat})
		assert.True(t, IsValidation(err))
	})

	t.Run("coordinates moved outside region", func(t *testing.T) {
		lat, lng := 55.75, 37.61 // Moscow
		_, err := env.objectFlow.EditObject(ctx, callerFor(author), object.UUID, &dto.EditObjectRequest{Latitude: &lat, Longitude: &lng})
		assert.True(t, IsValidation(err))
	})

	t.Run("coordinates and tags replaced", func(t *testing.T) {
		lat, lng := 50.45, 30.52
		resp, err := env.objectFlow.EditObject(ctx, callerFor(author), object.UUID, &dto.EditObjectRequest{
			Latitude:  &lat,
			Longitude: &lng,
			TagIDs:    []uint{newTag.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, lat, resp.Object.Latitude)
		require.Len(t, resp.Object.Tags, 1)
		assert.Equal(t, newTag.Name, resp.Object.Tags[0].Name)
	})
}

func TestGetObjectVisibility(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	author := env.mustUser(t, models.RoleUser)
	other := env.mustUser(t, models.RoleUser)
	admin := env.mustUser(t, models.RoleAdmin)

	approved := env.mustObject(t, author.ID, models.ObjectStatusApproved)
	pending := env.mustObject(t, author.ID, models.ObjectStatusPending)
	archived := env.mustObject(t, author.ID, models.ObjectStatusArchived)

	// Approved objects are public
	_, err := env.objectFlow.GetObject(ctx, GuestCaller(), approved.UUID)
	assert.NoError(t, err)

	// Invisible objects read as not found, never as forbidden
	for _, o := range []*models.CulturalObject{pending, archived} {
		_, err = env.objectFlow.GetObject(ctx, GuestCaller(), o.UUID)
		assert.True(t, IsObjectNotFound(err))

		_, err = env.objectFlow.GetObject(ctx, callerFor(other), o.UUID)
		assert.True(t, IsObjectNotFound(err))

		_, err = env.objectFlow.GetObject(ctx, callerFor(author), o.UUID)
		assert.NoError(t, err)

		_, err = env.objectFlow.GetObject(ctx, callerFor(admin), o.UUID)
		assert.NoError(t, err)
	}

	_, err = env.objectFlow.GetObject(ctx, GuestCaller(), uuid.New())
	assert.True(t, IsObjectNotFound(err))
}

func TestListObjectsVisibility(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	userA := env.mustUser(t, models.RoleUser)
	userB := env.mustUser(t, models.RoleUser)
	admin := env.mustUser(t, models.RoleAdmin)

	env.mustObject(t, userA.ID, models.ObjectStatusApproved)
	env.mustObject(t, userA.ID, models.ObjectStatusPending)
	env.mustObject(t, userB.ID, models.ObjectStatusPending)
	env.mustObject(t, userB.ID, models.ObjectStatusArchived)

	list := func(caller Caller, req *dto.ListObjectsRequest) *dto.ListObjectsResponse {
		resp, err := env.objectFlow.ListObjects(ctx, caller, req)
		require.NoError(t, err)
		return resp
	}

	// Guests see approved only
	assert.EqualValues(t, 1, list(GuestCaller(), &dto.ListObjectsRequest{}).Total)

	// Users see approved plus their own submissions in any state
	assert.EqualValues(t, 2, list(callerFor(userA), &dto.ListObjectsRequest{}).Total)
	assert.EqualValues(t, 3, list(callerFor(userB), &dto.ListObjectsRequest{}).Total)

	// Admins see everything
	assert.EqualValues(t, 4, list(callerFor(admin), &dto.ListObjectsRequest{}).Total)

	// The status filter is admin-only; regular users cannot widen their view
	pending := models.ObjectStatusPending.String()
	assert.EqualValues(t, 2, list(callerFor(admin), &dto.ListObjectsRequest{Status: &pending}).Total)
	assert.EqualValues(t, 2, list(callerFor(userA), &dto.ListObjectsRequest{Status: &pending}).Total)

	// Invalid admin status filter is rejected
	bogus := "bogus"
	_, err := env.objectFlow.ListObjects(ctx, callerFor(admin), &dto.ListObjectsRequest{Status: &bogus})
	assert.True(t, IsValidation(err))
}

func TestListObjectsFilters(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	author := env.mustUser(t, models.RoleUser)
	castles := env.mustTag(t, "Castles")
	museums := env.mustTag(t, "Museums")

	env.mustObject(t, author.ID, models.ObjectStatusApproved, *castles) // lat 49.5, lng 31.0
	env.mustObject(t, author.ID, models.ObjectStatusApproved, *museums)

	byTag, err := env.objectFlow.ListObjects(ctx, GuestCaller(), &dto.ListObjectsRequest{TagIDs: []uint{castles.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, byTag.Total)

	// Bounding box away from the fixture coordinates
	bbox := &dto.ListObjectsRequest{
		MinLatitude:  utils.ToPtr(44.0),
		MaxLatitude:  utils.ToPtr(45.0),
		MinLongitude: utils.ToPtr(22.0),
		MaxLongitude: utils.ToPtr(23.0),
	}
	empty, err := env.objectFlow.ListObjects(ctx, GuestCaller(), bbox)
	require.NoError(t, err)
	assert.EqualValues(t, 0, empty.Total)
}

func TestListObjectsPagination(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	author := env.mustUser(t, models.RoleUser)
	for i := 0; i < 3; i++ {
		env.mustObject(t, author.ID, models.ObjectStatusApproved)
	}

	first, err := env.objectFlow.ListObjects(ctx, GuestCaller(), &dto.ListObjectsRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, first.Total)
	assert.Len(t, first.Items, 2)

	second, err := env.objectFlow.ListObjects(ctx, GuestCaller(), &dto.ListObjectsRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, second.Total)
	assert.Len(t, second.Items, 1)

	_, err = env.objectFlow.ListObjects(ctx, GuestCaller(), &dto.ListObjectsRequest{PageSize: 101})
	assert.True(t, IsInvalidPageSize(err))
}

// TestGuestListingCache verifies guest listings are cached by filter
// signature and dropped on any write
func TestGuestListingCache(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	author := env.mustUser(t, models.RoleUser)
	tag := env.mustTag(t, "Cache")
	env.mustObject(t, author.ID, models.ObjectStatusApproved, *tag)

	req := &dto.ListObjectsRequest{}

	_, err := env.objectFlow.ListObjects(ctx, GuestCaller(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, env.cache.sets)

	// Same signature hits the cache instead of refilling it
	_, err = env.objectFlow.ListObjects(ctx, GuestCaller(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, env.cache.sets)

	// A different signature is a separate entry
	_, err = env.objectFlow.ListObjects(ctx, GuestCaller(), &dto.ListObjectsRequest{TagIDs: []uint{tag.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, env.cache.sets)

	// Authenticated listings bypass the cache entirely
	_, err = env.objectFlow.ListObjects(ctx, callerFor(author), req)
	require.NoError(t, err)
	assert.Equal(t, 2, env.cache.sets)

	// Any write invalidates the namespace
	_, err = env.objectFlow.SubmitObject(ctx, callerFor(author), submitRequest(tag.ID), NewClientMetadata("127.0.0.1", "go-test"))
	require.NoError(t, err)
	assert.NotZero(t, env.cache.invalidations)
	assert.Empty(t, env.cache.entries)
}
