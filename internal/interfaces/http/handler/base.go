package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	rentalapp "github.com/webdevsha/permitak/internal/application/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"github.com/webdevsha/permitak/internal/infrastructure/auth"
	"github.com/webdevsha/permitak/internal/infrastructure/logger"
	"github.com/webdevsha/permitak/internal/interfaces/http/dto"
	"github.com/webdevsha/permitak/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// BindError answers a failed ShouldBind call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError maps domain errors onto their HTTP status; anything else is a
// logged 500 with a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.GinLogger(c, zap.NewNop()).Error("request failed", zap.Error(err))
		}
		// wrapped causes stay in the log
		h.Error(c, status, domainErr.Code, domainErr.Message)
		return
	}

	logger.GinLogger(c, zap.NewNop()).Error("unexpected error", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// parseID reads a uuid path parameter, answering 400 when it is malformed
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// getUserID extracts the caller's user id from the JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return claims.GetUserUUID()
}

// scopeFor limits organizers to the locations they organize
func scopeFor(c *gin.Context) (rentalapp.Scope, error) {
	if middleware.GetJWTRole(c) != auth.RoleOrganizer {
		return rentalapp.Unrestricted, nil
	}
	id, err := getUserID(c)
	if err != nil {
		return rentalapp.Scope{}, err
	}
	return rentalapp.OrganizerScope(id), nil
}
