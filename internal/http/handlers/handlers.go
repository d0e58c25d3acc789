package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/geolocator/backend/internal/config"
	"github.com/geolocator/backend/internal/geocode"
	"github.com/geolocator/backend/internal/http/middleware"
)

const (
	msgAPIKeyMissing = "API key is missing."
	msgFetchFailed   = "Failed to fetch suggestions. Please try again."
	msgQueryTooLong  = "Query is too long."
)

// NewValidator returns a validator with the maxbytes tag registered. The
// built-in max tag counts runes, which lets multibyte queries past the cap.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// Autocompleter is the provider side of the proxy.
type Autocompleter interface {
	Configured() bool
	Autocomplete(ctx context.Context, text string) ([]byte, error)
}

type Handler struct {
	Geocoder  Autocompleter
	Validator *validator.Validate
	Logger    zerolog.Logger
	Map       config.MapConfig
}

type suggestionQuery struct {
	Query string `validate:"maxbytes=512"`
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Location autocomplete
// @Description Forwards the query to the geocoding provider and relays its feature collection
// @Tags geocode
// @Produce json
// @Param query query string true "free text place name"
// @Success 200 {object} geocode.FeatureCollection
// @Failure 400 {object} geocode.ErrorBody
// @Failure 500 {object} geocode.ErrorBody
// @Router /api/geoapihide [get]
func (h *Handler) GeoapiHide(c *gin.Context) {
	log := h.Logger.With().Str("request_id", middleware.GetRequestID(c)).Logger()

	if h.Geocoder == nil || !h.Geocoder.Configured() {
		log.Error().Msg("GEOAPIFY_API_KEY is not set")
		writeError(c, http.StatusInternalServerError, msgAPIKeyMissing)
		return
	}

	q := suggestionQuery{Query: c.Query("query")}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, msgQueryTooLong)
		return
	}

	body, err := h.Geocoder.Autocomplete(c.Request.Context(), q.Query)
	if err != nil {
		if errors.Is(err, geocode.ErrMissingAPIKey) {
			writeError(c, http.StatusInternalServerError, msgAPIKeyMissing)
			return
		}
		log.Error().Err(err).Msg("autocomplete failed")
		writeError(c, http.StatusInternalServerError, msgFetchFailed)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// @Summary Map configuration
// @Description Base tile layer and initial view for map front ends
// @Tags map
// @Produce json
// @Success 200 {object} config.MapConfig
// @Router /api/map/config [get]
func (h *Handler) MapConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Map)
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, geocode.ErrorBody{Error: message})
}
