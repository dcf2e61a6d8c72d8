package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/services"
	"github.com/temcen/wardrobe/pkg/models"
)

type OutfitHandler struct {
	outfits  *services.OutfitService
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewOutfitHandler(outfits *services.OutfitService, validate *validator.Validate, logger *logrus.Logger) *OutfitHandler {
	return &OutfitHandler{
		outfits:  outfits,
		validate: validate,
		logger:   logger,
	}
}

func (h *OutfitHandler) List(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	outfits, err := h.outfits.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err, "OUTFIT_LIST_FAILED", "Failed to list outfits")
		return
	}

	c.JSON(http.StatusOK, gin.H{"outfits": outfits, "total": len(outfits)})
}

func (h *OutfitHandler) Create(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	var req models.SaveOutfitRequest
	if !bindJSON(c, h.validate, h.logger, &req) {
		return
	}

	outfit, err := h.outfits.Save(c.Request.Context(), owner, &req)
	if err != nil {
		respondError(c, h.logger, err, "OUTFIT_SAVE_FAILED", "Failed to save outfit")
		return
	}

	c.JSON(http.StatusCreated, outfit)
}

func (h *OutfitHandler) LogWorn(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}

	// the body is optional; an empty one means "today"
	var req models.LogWornRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, h.validate, h.logger, &req) {
		return
	}

	outfit, err := h.outfits.LogWorn(c.Request.Context(), owner, id, req.Date)
	if err != nil {
		respondError(c, h.logger, err, "OUTFIT_UPDATE_FAILED", "Failed to log outfit as worn")
		return
	}

	c.JSON(http.StatusOK, outfit)
}

func (h *OutfitHandler) Rate(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}

	var req models.RateOutfitRequest
	if !bindJSON(c, h.validate, h.logger, &req) {
		return
	}

	outfit, err := h.outfits.Rate(c.Request.Context(), owner, id, req.Rating)
	if err != nil {
		respondError(c, h.logger, err, "OUTFIT_UPDATE_FAILED", "Failed to rate outfit")
		return
	}

	c.JSON(http.StatusOK, outfit)
}

func (h *OutfitHandler) Rename(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}

	var req models.RenameOutfitRequest
	if !bindJSON(c, h.validate, h.logger, &req) {
		return
	}

	outfit, err := h.outfits.Rename(c.Request.Context(), owner, id, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "OUTFIT_UPDATE_FAILED", "Failed to rename outfit")
		return
	}

	c.JSON(http.StatusOK, outfit)
}

func (h *OutfitHandler) Delete(c *gin.Context) {
	owner, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.outfits.Delete(c.Request.Context(), owner, id); err != nil {
		respondError(c, h.logger, err, "OUTFIT_DELETE_FAILED", "Failed to delete outfit")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OutfitHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_OUTFIT_ID", "Invalid outfit ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}
