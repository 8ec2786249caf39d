package handlers

import (
	"log"
	"strconv"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/middleware"
	businessflow "github.com/culturemap-ua/culturemap-api/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// TagHandlerInterface defines the contract for tag registry handlers
type TagHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// TagHandler handles tag registry HTTP requests
type TagHandler struct {
	tagFlow   businessflow.TagFlow
	validator *validator.Validate
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagFlow businessflow.TagFlow) *TagHandler {
	return &TagHandler{
		tagFlow:   tagFlow,
		validator: validator.New(),
	}
}

func (h *TagHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TagHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List returns the full tag registry
// @Summary List Tags
// @Description List all tags ordered by name
// @Tags Tags
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListTagsResponse} "Tags retrieved"
// @Router /api/v1/tags [get]
func (h *TagHandler) List(c fiber.Ctx) error {
	result, err := h.tagFlow.ListTags(createRequestContext(c, "/api/v1/tags"))
	if err != nil {
		log.Println("Tag listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tag listing failed", "LIST_TAGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Create registers a new tag
// @Summary Create Tag
// @Description Create a tag; labels differing only by case collide
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTagRequest true "Tag data"
// @Success 201 {object} dto.APIResponse{data=dto.TagResponse} "Tag created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 409 {object} dto.APIResponse "Tag label already exists"
// @Router /api/v1/admin/tags [post]
func (h *TagHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTagRequest
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

	caller := middleware.CallerFromContext(c)

	result, err := h.tagFlow.CreateTag(createRequestContext(c, "/api/v1/admin/tags"), caller, &req)
	if err != nil {
		return h.handleTagError(c, err, "Tag creation failed", "CREATE_TAG_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Update renames a tag or changes its icon
// @Summary Update Tag
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Param request body dto.UpdateTagRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.TagResponse} "Tag updated"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Tag not found"
// @Failure 409 {object} dto.APIResponse "Tag label already exists"
// @Router /api/v1/admin/tags/{id} [patch]
func (h *TagHandler) Update(c fiber.Ctx) error {
	tagID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tag ID", "INVALID_TAG_ID", nil)
	}

	var req dto.UpdateTagRequest
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

	caller := middleware.CallerFromContext(c)

	result, err := h.tagFlow.UpdateTag(createRequestContext(c, "/api/v1/admin/tags/:id"), caller, uint(tagID), &req)
	if err != nil {
		return h.handleTagError(c, err, "Tag update failed", "UPDATE_TAG_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Delete removes a tag; objects carrying it are untouched
// @Summary Delete Tag
// @Tags Tags
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 200 {object} dto.APIResponse "Tag deleted"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Tag not found"
// @Router /api/v1/admin/tags/{id} [delete]
func (h *TagHandler) Delete(c fiber.Ctx) error {
	tagID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tag ID", "INVALID_TAG_ID", nil)
	}

	caller := middleware.CallerFromContext(c)

	if err := h.tagFlow.DeleteTag(createRequestContext(c, "/api/v1/admin/tags/:id"), caller, uint(tagID)); err != nil {
		return h.handleTagError(c, err, "Tag deletion failed", "DELETE_TAG_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tag deleted", nil)
}

// handleTagError maps tag business errors to HTTP responses
func (h *TagHandler) handleTagError(c fiber.Ctx, err error, genericMsg, genericCode string) error {
	switch {
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Admin role required", "FORBIDDEN", nil)
	case businessflow.IsTagNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Tag not found", "TAG_NOT_FOUND", nil)
	case businessflow.IsTagConflict(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Tag label already exists", "TAG_CONFLICT", nil)
	case businessflow.IsValidation(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	default:
		log.Println(genericMsg, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, genericMsg, genericCode, nil)
	}
}
