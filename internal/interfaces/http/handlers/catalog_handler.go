package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/search/opensearch"
)

// CatalogSearcher runs structured catalog queries.
type CatalogSearcher interface {
	Search(ctx context.Context, criteria opensearch.Criteria) (*opensearch.Result, error)
}

// CatalogHandler serves the structured catalog search endpoint.
type CatalogHandler struct {
	catalog CatalogSearcher
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog CatalogSearcher) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type catalogSearchRequest struct {
	TechKeyword        string   `json:"tech_keyword"`
	ProductKeyword     string   `json:"product_keyword"`
	Description        string   `json:"description"`
	Claims             string   `json:"claims"`
	Inventor           string   `json:"inventor"`
	Manager            string   `json:"manager"`
	Applicant          string   `json:"applicant"`
	ApplicationNumber  string   `json:"application_number"`
	RegistrationNumber string   `json:"registration_number"`
	Statuses           []string `json:"statuses"`
	Page               int      `json:"page"`
	PageSize           int      `json:"page_size"`
}

// Search handles POST /api/v1/catalog/search.
func (h *CatalogHandler) Search(c *gin.Context) {
	var req catalogSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "malformed search request")
		return
	}

	result, err := h.catalog.Search(c.Request.Context(), opensearch.Criteria{
		TechKeyword:        req.TechKeyword,
		ProductKeyword:     req.ProductKeyword,
		Description:        req.Description,
		Claims:             req.Claims,
		Inventor:           req.Inventor,
		Manager:            req.Manager,
		Applicant:          req.Applicant,
		ApplicationNumber:  req.ApplicationNumber,
		RegistrationNumber: req.RegistrationNumber,
		Statuses:           req.Statuses,
		Page:               req.Page,
		PageSize:           req.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
