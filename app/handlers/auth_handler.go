package handlers

import (
	"log"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	businessflow "github.com/culturemap-ua/culturemap-api/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Register(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authFlow  businessflow.AuthFlow
	validator *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{
		authFlow:  authFlow,
		validator: validator.New(),
	}
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Register handles account creation
// @Summary User Registration
// @Description Register a new account with username, email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Account created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Username or email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.authFlow.Register(createRequestContext(c, "/api/v1/auth/register"), &req, metadata)
	if err != nil {
		if businessflow.IsUsernameAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Username already exists", "USERNAME_EXISTS", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsValidation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", "REGISTER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Login handles authentication by username or email
// @Summary User Login
// @Description Authenticate with username or email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.authFlow.Login(createRequestContext(c, "/api/v1/auth/login"), &req, metadata)
	if err != nil {
		// Credential failures are reported uniformly
		if businessflow.IsUserNotFound(err) || businessflow.IsIncorrectPassword(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsValidation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Login failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Refresh exchanges a refresh token for a fresh token pair
// @Summary Refresh Tokens
// @Description Exchange a refresh token for a new access/refresh pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.TokenPairDTO} "Tokens refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if req.RefreshToken == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "refresh_token is required", "VALIDATION_ERROR", nil)
	}

	result, err := h.authFlow.Refresh(createRequestContext(c, "/api/v1/auth/refresh"), req.RefreshToken)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Token refresh failed", "REFRESH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tokens refreshed", result)
}
