package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leaseinvoicedomain "github.com/masarmall/leasing/internal/leaseinvoice/domain"
)

func (s *Server) ListLeaseInvoices(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  string `form:"page_size"`
		LeaseID   string `form:"lease_id"`
		Status    string `form:"status"`
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

	resp, err := s.invoiceSvc.List(c.Request.Context(), leaseinvoicedomain.ListInvoiceRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
		LeaseID:   strings.TrimSpace(query.LeaseID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateLeaseInvoiceStatus(c *gin.Context) {
	var req leaseinvoicedomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
