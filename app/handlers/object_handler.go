package handlers

import (
	"log"
	"strconv"
	"strings"

	"github.com/culturemap-ua/culturemap-api/app/dto"
	"github.com/culturemap-ua/culturemap-api/app/middleware"
	businessflow "github.com/culturemap-ua/culturemap-api/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ObjectHandlerInterface defines the contract for cultural object handlers
type ObjectHandlerInterface interface {
	Submit(c fiber.Ctx) error
	Edit(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// ObjectHandler handles cultural object HTTP requests
type ObjectHandler struct {
	objectFlow businessflow.ObjectFlow
	validator  *validator.Validate
}

// NewObjectHandler creates a new object handler
func NewObjectHandler(objectFlow businessflow.ObjectFlow) *ObjectHandler {
	return &ObjectHandler{
		objectFlow: objectFlow,
		validator:  validator.New(),
	}
}

func (h *ObjectHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ObjectHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Submit handles new object submissions
// @Summary Submit Cultural Object
// @Description Submit a new cultural object for moderation
// @Tags Objects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitObjectRequest true "Object data"
// @Success 201 {object} dto.APIResponse{data=dto.ObjectResponse} "Object submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/objects [post]
func (h *ObjectHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitObjectRequest
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
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.objectFlow.SubmitObject(createRequestContext(c, "/api/v1/objects"), caller, &req, metadata)
	if err != nil {
		return h.handleObjectError(c, err, "Object submission failed", "SUBMIT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Edit handles updates to an existing object
// @Summary Edit Cultural Object
// @Description Edit an object; authors may edit while pending, admins anytime
// @Tags Objects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Object UUID"
// @Param request body dto.EditObjectRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ObjectResponse} "Object updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Not permitted"
// @Failure 404 {object} dto.APIResponse "Object not found"
// @Router /api/v1/objects/{uuid} [patch]
func (h *ObjectHandler) Edit(c fiber.Ctx) error {
	objectUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid object UUID", "INVALID_UUID", nil)
	}

	var req dto.EditObjectRequest
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

	result, err := h.objectFlow.EditObject(createRequestContext(c, "/api/v1/objects/:uuid"), caller, objectUUID, &req)
	if err != nil {
		return h.handleObjectError(c, err, "Object edit failed", "EDIT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Get reads one object
// @Summary Get Cultural Object
// @Description Fetch a single object; pending and archived ones are visible to their author and admins only
// @Tags Objects
// @Produce json
// @Param uuid path string true "Object UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ObjectResponse} "Object retrieved"
// @Failure 404 {object} dto.APIResponse "Object not found"
// @Router /api/v1/objects/{uuid} [get]
func (h *ObjectHandler) Get(c fiber.Ctx) error {
	objectUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid object UUID", "INVALID_UUID", nil)
	}

	caller := middleware.CallerFromContext(c)

	result, err := h.objectFlow.GetObject(createRequestContext(c, "/api/v1/objects/:uuid"), caller, objectUUID)
	if err != nil {
		return h.handleObjectError(c, err, "Object lookup failed", "GET_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List returns the map listing
// @Summary List Cultural Objects
// @Description List objects with optional tag, bounding box and pagination filters
// @Tags Objects
// @Produce json
// @Param tag_ids query string false "Comma-separated tag IDs (OR semantics)"
// @Param min_lat query number false "Bounding box minimum latitude"
// @Param max_lat query number false "Bounding box maximum latitude"
// @Param min_lng query number false "Bounding box minimum longitude"
// @Param max_lng query number false "Bounding box maximum longitude"
// @Param status query string false "Status filter (admin only)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListObjectsResponse} "Objects retrieved"
// @Router /api/v1/objects [get]
func (h *ObjectHandler) List(c fiber.Ctx) error {
	req, err := parseListQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	}

	caller := middleware.CallerFromContext(c)

	result, err := h.objectFlow.ListObjects(createRequestContext(c, "/api/v1/objects"), caller, req)
	if err != nil {
		return h.handleObjectError(c, err, "Listing failed", "LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// handleObjectError maps business errors to HTTP responses
func (h *ObjectHandler) handleObjectError(c fiber.Ctx, err error, genericMsg, genericCode string) error {
	switch {
	case businessflow.IsObjectNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Object not found", "OBJECT_NOT_FOUND", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Not permitted", "FORBIDDEN", nil)
	case businessflow.IsTagNotFound(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "One or more tags do not exist", "TAG_NOT_FOUND", nil)
	case businessflow.IsInvalidTransition(err):
		return h.ErrorResponse(c, fiber.StatusConflict, err.Error(), "INVALID_TRANSITION", nil)
	case businessflow.IsValidation(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	case businessflow.IsInvalidPageSize(err) || businessflow.IsInvalidPage(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	default:
		log.Println(genericMsg, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, genericMsg, genericCode, nil)
	}
}

// parseListQuery builds a listing request from query parameters
func parseListQuery(c fiber.Ctx) (*dto.ListObjectsRequest, error) {
	req := &dto.ListObjectsRequest{}

	if raw := c.Query("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, "tag_ids must be a comma-separated list of IDs")
			}
			req.TagIDs = append(req.TagIDs, uint(id))
		}
	}

	parseFloat := func(key string) (*float64, error) {
		raw := c.Query(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be a number")
		}
		return &v, nil
	}

	var err error
	if req.MinLatitude, err = parseFloat("min_lat"); err != nil {
		return nil, err
	}
	if req.MaxLatitude, err = parseFloat("max_lat"); err != nil {
		return nil, err
	}
	if req.MinLongitude, err = parseFloat("min_lng"); err != nil {
		return nil, err
	}
	if req.MaxLongitude, err = parseFloat("max_lng"); err != nil {
		return nil, err
	}

	if raw := c.Query("status"); raw != "" {
		status := strings.ToLower(strings.TrimSpace(raw))
		req.Status = &status
	}

	page, err := strconv.ParseUint(c.Query("page", "1"), 10, 32)
	if err != nil || page == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "page must be a positive integer")
	}
	pageSize, err := strconv.ParseUint(c.Query("page_size", "50"), 10, 32)
	if err != nil || pageSize == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "page_size must be a positive integer")
	}
	req.Page = uint(page)
	req.PageSize = uint(pageSize)

	return req, nil
}
