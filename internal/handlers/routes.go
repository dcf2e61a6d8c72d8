package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the wardrobe API on an already authenticated group.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	suggestions := api.Group("/suggestions")
	{
		suggestions.GET("", h.Suggestion.Get)
		suggestions.POST("/name", h.Suggestion.Name)
		suggestions.POST("/repeat-check", h.Suggestion.RepeatCheck)
	}

	flags := api.Group("/flags")
	{
		flags.GET("", h.Flag.List)
		flags.POST("", h.Flag.Create)
	}

	items := api.Group("/items")
	{
		items.GET("", h.Item.List)
		items.POST("", h.Item.Upsert)
		items.POST("/import", h.Item.Import)
		items.DELETE("/:id", h.Item.Archive)
	}

	outfits := api.Group("/outfits")
	{
		outfits.GET("", h.Outfit.List)
		outfits.POST("", h.Outfit.Create)
		outfits.POST("/:id/worn", h.Outfit.LogWorn)
		outfits.PUT("/:id/rating", h.Outfit.Rate)
		outfits.PUT("/:id/name", h.Outfit.Rename)
		outfits.DELETE("/:id", h.Outfit.Delete)
	}
}
