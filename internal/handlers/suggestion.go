package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/services"
	"github.com/temcen/wardrobe/pkg/models"
)

type SuggestionHandler struct {
	suggestions *services.SuggestionService
	validate    *validator.Validate
	logger      *logrus.Logger
}

func NewSuggestionHandler(suggestions *services.SuggestionService, validate *validator.Validate, logger *logrus.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestions: suggestions,
		validate:    validate,
		logger:      logger,
	}
}

// Get handles GET /suggestions?season=&occasion=&max_results=&names=
func (h *SuggestionHandler) Get(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	var req models.SuggestionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	if !validateStruct(c, h.validate, &req) {
		return
	}

	resp, err := h.suggestions.Suggest(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, h.logger, err, "SUGGESTION_FAILED", "Failed to generate suggestions")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SuggestionHandler) Name(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	var req models.ItemSetRequest
	if !bindJSON(c, h.validate, h.logger, &req) {
		return
	}

	name, err := h.suggestions.NameOutfit(c.Request.Context(), owner, req.ItemIDs)
	if err != nil {
		respondError(c, h.logger, err, "NAMING_FAILED", "Failed to name outfit")
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name})
}

func (h *SuggestionHandler) RepeatCheck(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	var req models.ItemSetRequest
	if !bindJSON(c, h.validate, h.logger, &req) {
		return
	}

	result, err := h.suggestions.CheckRepeat(c.Request.Context(), owner, req.ItemIDs)
	if err != nil {
		respondError(c, h.logger, err, "REPEAT_CHECK_FAILED", "Failed to check outfit history")
		return
	}

	c.JSON(http.StatusOK, result)
}
