package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kidtimer/internal/model"
)

// CatalogHandler serves the built-in preset and sound lists.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": model.Presets()})
}

func (h *CatalogHandler) Sounds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sounds": model.Sounds()})
}
