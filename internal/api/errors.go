package api

import (
	"errors"
	"net/http"

	"fitcabinet/coach-crm/internal/access"
	"fitcabinet/coach-crm/internal/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// accessOp distinguishes how a failed visibility check is surfaced.
type accessOp int

const (
	// opRead hides denied objects behind 404 so existence is never
	// confirmed to an account outside the coach/client pair.
	opRead accessOp = iota
	// opWrite returns an explicit 403: the caller already proved
	// knowledge of the object by addressing a mutation at it.
	opWrite
)

// handleAccessError maps guard/repository errors onto HTTP statuses.
// Returns true when the error was handled and the request aborted.
func handleAccessError(c *gin.Context, err error, op accessOp) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, access.ErrForbidden):
		if op == opRead {
			abortWithError(c, http.StatusNotFound, "Not found")
		} else {
			abortWithError(c, http.StatusForbidden, "Access denied")
		}
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
	return true
}

// parseIDParam converts a :param path segment into an ObjectID, aborting
// with 400 on garbage input.
func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseObjectID converts an ID from a request body.
func parseObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
