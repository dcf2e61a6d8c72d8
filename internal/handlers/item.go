package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/services"
	"github.com/temcen/wardrobe/pkg/models"
)

const maxImportBytes = 4 << 20

type ItemHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

func NewItemHandler(catalog *services.CatalogService, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *ItemHandler) List(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	items, err := h.catalog.List(c.Request.Context(), owner, c.Query("include_archived") == "true")
	if err != nil {
		respondError(c, h.logger, err, "ITEM_LIST_FAILED", "Failed to list items")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// Upsert validates in the catalog service, so the body is only decoded here.
func (h *ItemHandler) Upsert(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	var item models.ClothingItem
	if err := c.ShouldBindJSON(&item); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if err := h.catalog.Upsert(c.Request.Context(), owner, &item); err != nil {
		respondError(c, h.logger, err, "ITEM_SAVE_FAILED", "Failed to save item")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Import(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	data, err := c.GetRawData()
	if err != nil {
		errorJSON(c, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE", "Import document could not be read")
		return
	}

	report, err := h.catalog.Import(c.Request.Context(), owner, data)
	if err != nil {
		respondError(c, h.logger, err, "IMPORT_FAILED", "Failed to import wardrobe")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ItemHandler) Archive(c *gin.Context) {
	owner, ok := ownerOrAbort(c)
	if !ok {
		return
	}

	if err := h.catalog.Archive(c.Request.Context(), owner, c.Param("id")); err != nil {
		respondError(c, h.logger, err, "ITEM_ARCHIVE_FAILED", "Failed to archive item")
		return
	}

	c.Status(http.StatusNoContent)
}
