package dto

// RegisterRequest represents the request to create a new account
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// LoginRequest represents the request to authenticate an account.
// Identifier accepts either username or email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required"`
}

// AuthUserDTO represents a user in authentication responses
type AuthUserDTO struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// TokenPairDTO carries the issued JWT pair
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// RegisterResponse represents the response to a successful registration
type RegisterResponse struct {
	Message string       `json:"message"`
	User    AuthUserDTO  `json:"user"`
	Tokens  TokenPairDTO `json:"tokens"`
}

// LoginResponse represents the response to a successful login
type LoginResponse struct {
	Message string       `json:"message"`
	User    AuthUserDTO  `json:"user"`
	Tokens  TokenPairDTO `json:"tokens"`
}
