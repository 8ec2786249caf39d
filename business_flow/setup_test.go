package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/culturemap-ua/culturemap-api/app/services"
	"github.com/culturemap-ua/culturemap-api/config"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/repository"
	apptesting "github.com/culturemap-ua/culturemap-api/testing"
	"github.com/stretchr/testify/require"
)

// fakeListingCache records listing cache traffic so tests can assert on
// caching and invalidation without a Redis instance
type fakeListingCache struct {
	entries       map[string][]byte
	sets          int
	invalidations int
}

func newFakeListingCache() *fakeListingCache {
	return &fakeListingCache{entries: make(map[string][]byte)}
}

func (c *fakeListingCache) GetListing(ctx context.Context, key string) ([]byte, bool, error) {
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *fakeListingCache) SetListing(ctx context.Context, key string, payload []byte) error {
	c.entries[key] = payload
	c.sets++
	return nil
}

func (c *fakeListingCache) Invalidate(ctx context.Context) error {
	c.entries = make(map[string][]byte)
	c.invalidations++
	return nil
}

// flowEnv wires every flow against a fresh in-memory database
type flowEnv struct {
	db *apptesting.TestDB
	fx *apptesting.TestFixtures

	userRepo   repository.UserRepository
	tagRepo    repository.TagRepository
	objectRepo repository.CulturalObjectRepository

	cache        *fakeListingCache
	tokenService services.TokenService

	authFlow       AuthFlow
	objectFlow     ObjectFlow
	tagFlow        TagFlow
	moderationFlow ModerationFlow
}

func testBounds() config.RegionBounds {
	return config.RegionBounds{
		MinLatitude:  44.0,
		MaxLatitude:  52.5,
		MinLongitude: 22.0,
		MaxLongitude: 40.5,
	}
}

func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()

	tdb, err := apptesting.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })

	tokenService, err := services.NewTokenService(
		time.Hour, 24*time.Hour,
		"culturemap-test", "culturemap-test-api",
		false, "", "", "test-secret-key-for-flow-tests-0123456789",
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(tdb.DB)
	tagRepo := repository.NewTagRepository(tdb.DB)
	objectRepo := repository.NewCulturalObjectRepository(tdb.DB)
	cache := newFakeListingCache()

	return &flowEnv{
		db:             tdb,
		fx:             apptesting.NewTestFixtures(tdb),
		userRepo:       userRepo,
		tagRepo:        tagRepo,
		objectRepo:     objectRepo,
		cache:          cache,
		tokenService:   tokenService,
		authFlow:       NewAuthFlow(userRepo, tokenService, 4, tdb.DB),
		objectFlow:     NewObjectFlow(objectRepo, tagRepo, cache, testBounds(), tdb.DB),
		tagFlow:        NewTagFlow(tagRepo, cache, tdb.DB),
		moderationFlow: NewModerationFlow(objectRepo, cache, false, tdb.DB),
	}
}

func callerFor(u *models.User) Caller {
	return Caller{UserID: u.ID, Role: u.Role}
}

func (env *flowEnv) mustUser(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	u, err := env.fx.CreateTestUser(role)
	require.NoError(t, err)
	return u
}

func (env *flowEnv) mustTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag, err := env.fx.CreateTestTag(name, nil)
	require.NoError(t, err)
	return tag
}

func (env *flowEnv) mustObject(t *testing.T, authorID uint, status models.ObjectStatus, tags ...models.Tag) *models.CulturalObject {
	t.Helper()
	o, err := env.fx.CreateTestObject(authorID, status, tags...)
	require.NoError(t, err)
	return o
}
