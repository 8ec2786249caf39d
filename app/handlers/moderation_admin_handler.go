package handlers

import (
	"log"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/middleware"
	businessflow "github.com/culturemap-ua/culturemap-api/business_flow"
	"github.com/culturemap-ua/culturemap-api/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ModerationAdminHandlerInterface defines the contract for admin moderation handlers
type ModerationAdminHandlerInterface interface {
	Transition(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// ModerationAdminHandler handles admin moderation HTTP requests
type ModerationAdminHandler struct {
	moderationFlow businessflow.ModerationFlow
	objectFlow     businessflow.ObjectFlow
	validator      *validator.Validate
}

// NewModerationAdminHandler creates a new admin moderation handler
func NewModerationAdminHandler(moderationFlow businessflow.ModerationFlow, objectFlow businessflow.ObjectFlow) *ModerationAdminHandler {
	return &ModerationAdminHandler{
		moderationFlow: moderationFlow,
		objectFlow:     objectFlow,
		validator:      validator.New(),
	}
}

func (h *ModerationAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ModerationAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Transition applies a moderation transition to an object
// @Summary Moderate Object
// @Description Move an object between pending, approved and archived states
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Object UUID"
// @Param request body dto.TransitionRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.ObjectResponse} "Transition applied"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Object not found"
// @Failure 409 {object} dto.APIResponse "Transition not allowed from current state"
// @Router /api/v1/admin/objects/{uuid}/transition [post]
func (h *ModerationAdminHandler) Transition(c fiber.Ctx) error {
	objectUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid object UUID", "INVALID_UUID", nil)
	}

	var req dto.TransitionRequest
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

	result, err := h.moderationFlow.Transition(
		createRequestContext(c, "/api/v1/admin/objects/:uuid/transition"),
		caller, objectUUID, models.ObjectStatus(req.Status))
	if err != nil {
		return h.handleModerationError(c, err, "Moderation transition failed", "TRANSITION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Delete removes an object (soft archive by default, hard delete when configured)
// @Summary Delete Object
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Object UUID"
// @Success 200 {object} dto.APIResponse "Object deleted"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Failure 404 {object} dto.APIResponse "Object not found"
// @Router /api/v1/admin/objects/{uuid} [delete]
func (h *ModerationAdminHandler) Delete(c fiber.Ctx) error {
	objectUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid object UUID", "INVALID_UUID", nil)
	}

	caller := middleware.CallerFromContext(c)

	if err := h.moderationFlow.DeleteObject(createRequestContext(c, "/api/v1/admin/objects/:uuid"), caller, objectUUID); err != nil {
		return h.handleModerationError(c, err, "Object deletion failed", "DELETE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Object deleted", nil)
}

// List returns objects in any state for review
// @Summary Admin Object Listing
// @Description List objects across all states with an optional status filter
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param tag_ids query string false "Comma-separated tag IDs"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListObjectsResponse} "Objects retrieved"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Router /api/v1/admin/objects [get]
func (h *ModerationAdminHandler) List(c fiber.Ctx) error {
	req, err := parseListQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}

	caller := middleware.CallerFromContext(c)

	result, err := h.objectFlow.ListObjects(createRequestContext(c, "/api/v1/admin/objects"), caller, req)
	if err != nil {
		return h.handleModerationError(c, err, "Listing failed", "LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Export downloads every object as an Excel workbook
// @Summary Export Objects
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary "Excel workbook"
// @Failure 403 {object} dto.APIResponse "Admin role required"
// @Router /api/v1/admin/objects/export [get]
func (h *ModerationAdminHandler) Export(c fiber.Ctx) error {
	caller := middleware.CallerFromContext(c)

	filename, payload, err := h.moderationFlow.ExportObjectsExcel(createRequestContext(c, "/api/v1/admin/objects/export"), caller)
	if err != nil {
		return h.handleModerationError(c, err, "Export failed", "EXPORT_FAILED")
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	return c.Send(payload)
}

// handleModerationError maps moderation business errors to HTTP responses
func (h *ModerationAdminHandler) handleModerationError(c fiber.Ctx, err error, genericMsg, genericCode string) error {
	switch {
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Admin role required", "FORBIDDEN", nil)
	case businessflow.IsObjectNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Object not found", "OBJECT_NOT_FOUND", nil)
	case businessflow.IsInvalidTransition(err):
		return h.ErrorResponse(c, fiber.StatusConflict, err.Error(), "INVALID_TRANSITION", nil)
	case businessflow.IsValidation(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	default:
		log.Println(genericMsg, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, genericMsg, genericCode, nil)
	}
}
