package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/middleware"
	"github.com/temcen/wardrobe/internal/services"
	"github.com/temcen/wardrobe/pkg/models"
)

type Handlers struct {
	Health     *HealthHandler
	Suggestion *SuggestionHandler
	Flag       *FlagHandler
	Item       *ItemHandler
	Outfit     *OutfitHandler
}

func New(logger *logrus.Logger, svc *services.Services) *Handlers {
	validate := validator.New()
	return &Handlers{
		Health:     NewHealthHandler(logger, svc.Health),
		Suggestion: NewSuggestionHandler(svc.Suggestions, validate, logger),
		Flag:       NewFlagHandler(svc.Feedback, svc.Suggestions, validate, logger),
		Item:       NewItemHandler(svc.Catalog, logger),
		Outfit:     NewOutfitHandler(svc.Outfits, validate, logger),
	}
}

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

var sentinelCodes = []struct {
	err    error
	status int
	code   string
}{
	{models.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{models.ErrInvalidPattern, http.StatusBadRequest, "INVALID_PATTERN"},
	{models.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{models.ErrEmptyOutfit, http.StatusBadRequest, "EMPTY_OUTFIT"},
	{models.ErrInvalidName, http.StatusBadRequest, "INVALID_NAME"},
	{models.ErrInvalidItem, http.StatusBadRequest, "INVALID_ITEM"},
	{models.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
}

// respondError maps service errors onto the error envelope. Anything that is
// not a known sentinel is logged and reported as fallbackCode with a 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error, fallbackCode, message string) {
	var importErr *services.ImportError
	if errors.As(err, &importErr) {
		c.JSON(http.StatusBadRequest, importErr.Result.ToAPIError())
		return
	}

	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			errorJSON(c, s.status, s.code, err.Error())
			return
		}
	}

	logger.WithError(err).WithField("path", c.FullPath()).Error(message)
	errorJSON(c, http.StatusInternalServerError, fallbackCode, message)
}

// bindJSON decodes and validates a request body, writing the 400 itself on failure.
func bindJSON(c *gin.Context, validate *validator.Validate, logger *logrus.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.WithError(err).Debug("Invalid JSON in request body")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_JSON",
				"message": "Invalid JSON format",
				"details": err.Error(),
			},
		})
		return false
	}
	return validateStruct(c, validate, dst)
}

func validateStruct(c *gin.Context, validate *validator.Validate, v interface{}) bool {
	if err := validate.Struct(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}

func ownerOrAbort(c *gin.Context) (uuid.UUID, bool) {
	owner, ok := middleware.OwnerFromContext(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing wardrobe owner")
	}
	return owner, ok
}
