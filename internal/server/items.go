package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	itemdomain "github.com/masarmall/leasing/internal/item/domain"
)

func (s *Server) CreateItem(c *gin.Context) {
	var req itemdomain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.itemSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListItems(c *gin.Context) {
	var query struct {
		PageToken       string   `form:"page_token"`
		PageSize        string   `form:"page_size"`
		StockItem       string   `form:"stock_item"`
		RentSpace       string   `form:"rent_space"`
		IncludeDisabled string   `form:"include_disabled"`
		Codes           []string `form:"code"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pageSize, err := parsePageSize(query.PageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	stockItem, err := parseOptionalBool(query.StockItem)
	if err != nil {
		AbortWithError(c, newValidationError("stock_item", "invalid_stock_item", "invalid stock_item"))
		return
	}
	rentSpace, err := parseOptionalBool(query.RentSpace)
	if err != nil {
		AbortWithError(c, newValidationError("rent_space", "invalid_rent_space", "invalid rent_space"))
		return
	}
	includeDisabled, err := parseOptionalBool(query.IncludeDisabled)
	if err != nil {
		AbortWithError(c, newValidationError("include_disabled", "invalid_include_disabled", "invalid include_disabled"))
		return
	}

	resp, err := s.itemSvc.List(c.Request.Context(), itemdomain.ListItemRequest{
		PageToken:       strings.TrimSpace(query.PageToken),
		PageSize:        pageSize,
		StockItem:       stockItem,
		RentSpace:       rentSpace,
		IncludeDisabled: includeDisabled != nil && *includeDisabled,
		Codes:           query.Codes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetItem(c *gin.Context) {
	resp, err := s.itemSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
