package testing

import (
	"fmt"
	"math/rand"

	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/culturemap-ua/culturemap-api/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a user with the given role and a bcrypt password
// of "TestPass123!"
func (tf *TestFixtures) CreateTestUser(role models.UserRole) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := fmt.Sprintf("%06d", rand.Intn(900000)+100000)

	user := &models.User{
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("%s_%s", role.String(), suffix),
		Email:        fmt.Sprintf("%s.%s@example.com", role.String(), suffix),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestTag creates a tag with a derived slug
func (tf *TestFixtures) CreateTestTag(name string, createdBy *uint) (*models.Tag, error) {
	tag := &models.Tag{
		Name:        name,
		Slug:        models.Slugify(name),
		Icon:        "🏰",
		CreatedByID: createdBy,
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tag: %w", err)
	}

	return tag, nil
}

// CreateTestObject creates a cultural object in the given status with one tag
func (tf *TestFixtures) CreateTestObject(authorID uint, status models.ObjectStatus, tags ...models.Tag) (*models.CulturalObject, error) {
	object := &models.CulturalObject{
		UUID:      uuid.New(),
		Title:     fmt.Sprintf("Test object %06d", rand.Intn(900000)+100000),
		Latitude:  49.5,
		Longitude: 31.0,
		AuthorID:  authorID,
		Tags:      tags,
		Status:    status,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if status == models.ObjectStatusArchived {
		object.ArchivedAt = utils.UTCNowPtr()
	}

	if err := tf.DB.DB.Create(object).Error; err != nil {
		return nil, fmt.Errorf("failed to create test object: %w", err)
	}

	return object, nil
}
