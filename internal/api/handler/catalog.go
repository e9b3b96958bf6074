package handler

import (
	"net/http"

	"github.com/mcoot/homeguess/internal/api/response"
	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/dependencies/random"
)

// CatalogHandler serves read-only catalog data
type CatalogHandler struct {
	catalog *catalog.Catalog
	random  random.Random
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c *catalog.Catalog, rnd random.Random) *CatalogHandler {
	return &CatalogHandler{catalog: c, random: rnd}
}

// RandomItem handles GET /api/random-item
func (h *CatalogHandler) RandomItem(w http.ResponseWriter, r *http.Request) {
	record, err := h.catalog.Random(h.random)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HomeFromModel(record))
}

// Zips handles GET /api/zips
func (h *CatalogHandler) Zips(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.ZipMarkersFromModel(h.catalog.Zips()))
}
