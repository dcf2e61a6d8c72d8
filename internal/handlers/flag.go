package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/services"
	"github.com/temcen/wardrobe/pkg/models"
)

type FlagHandler struct {
	feedback    *services.FeedbackStore
	suggestions *services.SuggestionService
	validate    *validator.Validate
	logger      *logrus.Logger
}

func NewFlagHandler(feedback *services.FeedbackStore, suggestions *services.SuggestionService, validate *validator.Validate, logger *logrus.Logger) *FlagHandler {
	return &FlagHandler{
		feedback:    feedback,
		suggestions: suggestions,
		validate:    validate,
		logger:      logger,
	}
}

// flagBody accepts either a raw pattern or a list of item ids.
type flagBody struct {
	Pattern string   `json:"pattern"`
	ItemIDs []string `json:"item_ids"`
	Reason  string   `json:"reason"`
}

func (h *FlagHandler) Create(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	var body flagBody
	if !bindJSON(c, h.validate, h.logger, &body) {
		return
	}

	ctx := c.Request.Context()
	var pattern string
	if len(body.ItemIDs) > 0 {
		req := models.FlagItemsRequest{ItemIDs: body.ItemIDs, Reason: body.Reason}
		if !validateStruct(c, h.validate, &req) {
			return
		}
		items, err := h.suggestions.ResolveItems(ctx, owner, req.ItemIDs)
		if err != nil {
			respondError(c, h.logger, err, "FLAG_FAILED", "Failed to flag outfit")
			return
		}
		if pattern, err = h.feedback.FlagItems(ctx, owner, items, req.Reason); err != nil {
			respondError(c, h.logger, err, "FLAG_FAILED", "Failed to flag outfit")
			return
		}
	} else {
		req := models.FlagRequest{Pattern: body.Pattern, Reason: body.Reason}
		if !validateStruct(c, h.validate, &req) {
			return
		}
		var err error
		if pattern, err = h.feedback.FlagOutfit(ctx, owner, req.Pattern, req.Reason); err != nil {
			respondError(c, h.logger, err, "FLAG_FAILED", "Failed to flag outfit")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"pattern": pattern})
}

func (h *FlagHandler) List(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	flags, err := h.feedback.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err, "FLAG_LIST_FAILED", "Failed to load flagged patterns")
		return
	}

	c.JSON(http.StatusOK, gin.H{"flags": flags})
}
