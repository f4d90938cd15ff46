package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/service"
)

// respondError translates service errors into the wire error shapes:
// field-scoped validation problems come back as {"<field>": "..."},
// state conflicts as {"errors": "..."}, and everything unexpected as
// an opaque 500.
func respondError(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	var conflictErr *service.ConflictError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"errors": "unable to log in with provided credentials"})
	case errors.Is(err, service.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"errors": "you cannot subscribe to yourself"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": conflictErr.Message})
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: fieldErr.Message})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"errors": "internal server error"})
	}
}

// requestUserID returns the authenticated user's ID. It is only valid
// on routes behind AuthMiddleware.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "authentication required"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

// viewerID returns the requester's ID when a valid token was supplied,
// or nil for anonymous requests. Used on optionally-authenticated
// routes where computed fields depend on identity.
func viewerID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// pathID parses the :id path parameter, responding 404 on garbage so
// that unknown and malformed identifiers look the same to clients.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
