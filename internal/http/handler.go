package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"licence-plate-checker/internal/http/middleware"
	"licence-plate-checker/internal/plate"
	"licence-plate-checker/internal/service"
)

type Handler struct {
	historyService *service.HistoryService
	validatorProxy http.Handler
	log            zerolog.Logger
}

func NewHandler(
	historyService *service.HistoryService,
	validatorProxy http.Handler,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		historyService: historyService,
		validatorProxy: validatorProxy,
		log:            log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	if h.validatorProxy != nil {
		r.Any("/licence-plate/*path", h.proxyValidator)
	}

	api := r.Group("/api")
	{
		api.POST("/fields/normalize", h.normalizeField)
		api.POST("/plates/assemble", h.assemblePlate)
	}

	// history holds user input, keep it behind auth
	protected := api.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/attempts", h.listAttempts)
		protected.GET("/attempts/:id", h.getAttempt)
	}
}

func (h *Handler) proxyValidator(c *gin.Context) {
	h.validatorProxy.ServeHTTP(c.Writer, c.Request)
}

type normalizeFieldResponse struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Focus string `json:"focus,omitempty"`
}

func (h *Handler) normalizeField(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	field, err := plate.ParseField(req.Field)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	value := plate.Normalize(field, req.Value)
	resp := normalizeFieldResponse{Field: field.String(), Value: value}
	if field.AutoAdvances() && plate.Len(value) == field.Cap() {
		next, _ := field.Next()
		resp.Focus = next.String()
	}

	c.JSON(http.StatusOK, successResponse(resp))
}

type assemblePlateResponse struct {
	Valid  bool   `json:"valid"`
	Plate  string `json:"plate,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) assemblePlate(c *gin.Context) {
	var req struct {
		Variant  string `json:"variant"`
		CityCode string `json:"cityCode"`
		Letters  string `json:"letters"`
		Numbers  string `json:"numbers"`
		Value    string `json:"value"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	variant, err := plate.ParseVariant(req.Variant)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var canonical string
	var invalid error
	switch variant {
	case plate.VariantFree:
		ff := plate.FreeForm{Value: req.Value}
		invalid = ff.Validate()
		canonical = ff.Canonical()
	default:
		var fields plate.FieldSet
		fields.Set(plate.FieldCityCode, req.CityCode)
		fields.Set(plate.FieldLetters, req.Letters)
		fields.Set(plate.FieldNumbers, req.Numbers)
		invalid = fields.Validate()
		canonical = fields.Canonical()
	}

	if invalid != nil {
		c.JSON(http.StatusOK, successResponse(assemblePlateResponse{Reason: invalid.Error()}))
		return
	}
	c.JSON(http.StatusOK, successResponse(assemblePlateResponse{Valid: true, Plate: canonical}))
}

func (h *Handler) listAttempts(c *gin.Context) {
	input := service.ListAttemptsInput{
		Plate:   strings.TrimSpace(c.Query("plate")),
		Outcome: strings.TrimSpace(c.Query("outcome")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
		input.Limit = limit
	}

	attempts, err := h.historyService.List(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if claims, ok := middleware.Claims(c); ok {
		h.log.Debug().Str("subject", claims.Subject).Int("count", len(attempts)).Msg("attempts listed")
	}

	c.JSON(http.StatusOK, successResponse(attempts))
}

func (h *Handler) getAttempt(c *gin.Context) {
	attempt, err := h.historyService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(attempt))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
