package gog

import "github.com/GTDGit/gtd_catalog/internal/models"

// CatalogResponse is the body of GET /v1/catalog.
type CatalogResponse struct {
	Pages        int                     `json:"pages"`
	CurrentPage  int                     `json:"currentPage"`
	ProductCount int                     `json:"productCount"`
	Products     []models.CatalogProduct `json:"products"`
}
