package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/merchops/replenish/internal/costing"
	"github.com/merchops/replenish/internal/domain"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors onto HTTP status codes. Input errors
// are the caller's problem, transition conflicts are 409, anything
// unexpected is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		transition *domain.InvalidTransitionError
		zeroWeight *costing.ZeroWeightError
	)

	switch {
	case errors.As(err, &validation) || errors.As(err, &zeroWeight):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
