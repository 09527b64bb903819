package handler

import (
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError translates a service error into the standard envelope, using
// the error kind for both the HTTP status and the machine-readable code.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.Error(status, string(apperror.KindOf(err)), apperror.Message(err)))
}
