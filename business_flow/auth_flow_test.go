package businessflow

import (
	"context"
	"testing"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(username, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "SecurePass123!",
		Password2: "SecurePass123!",
	}
}

func TestRegisterCreatesUserRole(t *testing.T) {
	env := newFlowEnv(t)
	meta := NewClientMetadata("127.0.0.1", "go-test")

	resp, err := env.authFlow.Register(context.Background(), registerRequest("oksana", "oksana@example.com"), meta)
	require.NoError(t, err)

	assert.Equal(t, "oksana", resp.User.Username)
	assert.Equal(t, models.RoleUser.String(), resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	meta := NewClientMetadata("127.0.0.1", "go-test")

	_, err := env.authFlow.Register(ctx, registerRequest("taras", "taras@example.com"), meta)
	require.NoError(t, err)

	_, err = env.authFlow.Register(ctx, registerRequest("taras", "other@example.com"), meta)
	assert.True(t, IsUsernameAlreadyExists(err))

	_, err = env.authFlow.Register(ctx, registerRequest("taras2", "taras@example.com"), meta)
	assert.True(t, IsEmailAlreadyExists(err))
}

func TestRegisterValidation(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	meta := NewClientMetadata("127.0.0.1", "go-test")

	tests := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
	}{
		{"short username", func(r *dto.RegisterRequest) { r.Username = "ab" }},
		{"username with whitespace", func(r *dto.RegisterRequest) { r.Username = "bad name" }},
		{"bad email", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *dto.RegisterRequest) { r.Password, r.Password2 = "short", "short" }},
		{"password mismatch", func(r *dto.RegisterRequest) { r.Password2 = "Different123!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest("valid_user", "valid@example.com")
			tt.mutate(req)
			_, err := env.authFlow.Register(ctx, req, meta)
			assert.True(t, IsValidation(err), "unexpected error: %v", err)
		})
	}
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	meta := NewClientMetadata("127.0.0.1", "go-test")

	_, err := env.authFlow.Register(ctx, registerRequest("lesya", "lesya@example.com"), meta)
	require.NoError(t, err)

	byUsername, err := env.authFlow.Login(ctx, &dto.LoginRequest{Identifier: "lesya", Password: "SecurePass123!"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "lesya", byUsername.User.Username)

	byEmail, err := env.authFlow.Login(ctx, &dto.LoginRequest{Identifier: "lesya@example.com", Password: "SecurePass123!"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "lesya", byEmail.User.Username)
}

func TestLoginFailures(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	meta := NewClientMetadata("127.0.0.1", "go-test")

	_, err := env.authFlow.Register(ctx, registerRequest("ivan", "ivan@example.com"), meta)
	require.NoError(t, err)

	_, err = env.authFlow.Login(ctx, &dto.LoginRequest{Identifier: "ivan", Password: "WrongPass123!"}, meta)
	assert.True(t, IsIncorrectPassword(err))

	_, err = env.authFlow.Login(ctx, &dto.LoginRequest{Identifier: "nobody", Password: "SecurePass123!"}, meta)
	assert.True(t, IsUserNotFound(err))

	_, err = env.authFlow.Login(ctx, &dto.LoginRequest{Identifier: "", Password: "SecurePass123!"}, meta)
	assert.True(t, IsValidation(err))

	// Deactivated accounts cannot log in
	require.NoError(t, env.db.DB.Model(&models.User{}).Where("username = ?", "ivan").Update("is_active", false).Error)
	_, err = env.authFlow.Login(ctx, &dto.LoginRequest{Identifier: "ivan", Password: "SecurePass123!"}, meta)
	assert.True(t, IsAccountInactive(err))
}

func TestRefreshTokenFlow(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()
	meta := NewClientMetadata("127.0.0.1", "go-test")

	registered, err := env.authFlow.Register(ctx, registerRequest("marko", "marko@example.com"), meta)
	require.NoError(t, err)

	pair, err := env.authFlow.Refresh(ctx, registered.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Access tokens are not accepted for refresh
	_, err = env.authFlow.Refresh(ctx, registered.Tokens.AccessToken)
	assert.Error(t, err)

	// Refresh stops working once the account is deactivated
	require.NoError(t, env.db.DB.Model(&models.User{}).Where("username = ?", "marko").Update("is_active", false).Error)
	_, err = env.authFlow.Refresh(ctx, registered.Tokens.RefreshToken)
	assert.True(t, IsAccountInactive(err))
}
