package handlers

import (
	"errors"
	"net/http"

	apperrors "rfp-agent/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorEnvelope is the JSON body every failed request carries.
type errorEnvelope struct {
	Error string `json:"error"`
}

// respondWithError logs the technical cause and returns only the user-facing
// message.
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	if logger != nil {
		fields = append(fields,
			zap.Error(technicalError),
			zap.String("path", c.Request.URL.Path))
		logger.Error("Request failed", fields...)
	}
	c.JSON(statusCode, errorEnvelope{Error: userMessage})
}

// respondWithClientError returns a validation failure; nothing to log.
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, errorEnvelope{Error: userMessage})
}

// respondWithLookupError maps a store lookup failure onto 404 for a missing
// record and 500 for anything else.
func respondWithLookupError(c *gin.Context, err error, resource string, logger *zap.Logger) {
	if errors.Is(err, apperrors.ErrNotFound) {
		respondWithClientError(c, http.StatusNotFound, resource+" not found")
		return
	}
	respondWithError(c, http.StatusInternalServerError, err, "Failed to load "+resource, logger)
}
