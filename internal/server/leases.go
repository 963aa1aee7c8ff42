package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
)

func (s *Server) CreateLease(c *gin.Context) {
	var req leasecontractdomain.UpsertLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leaseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateLease(c *gin.Context) {
	var req leasecontractdomain.UpsertLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leaseSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLease(c *gin.Context) {
	resp, err := s.leaseSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLeases(c *gin.Context) {
	var query struct {
		PageToken  string `form:"page_token"`
		PageSize   string `form:"page_size"`
		Status     string `form:"status"`
		Tenant     string `form:"tenant"`
		PropertyID string `form:"property_id"`
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

	resp, err := s.leaseSvc.List(c.Request.Context(), leasecontractdomain.ListLeaseRequest{
		PageToken:  strings.TrimSpace(query.PageToken),
		PageSize:   pageSize,
		Status:     strings.TrimSpace(query.Status),
		Tenant:     strings.TrimSpace(query.Tenant),
		PropertyID: strings.TrimSpace(query.PropertyID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SubmitLease(c *gin.Context) {
	s.transitionLease(c, s.leaseSvc.Submit)
}

func (s *Server) TerminateLease(c *gin.Context) {
	s.transitionLease(c, s.leaseSvc.Terminate)
}

func (s *Server) LegalCaseLease(c *gin.Context) {
	s.transitionLease(c, s.leaseSvc.LegalCase)
}

func (s *Server) RenewLease(c *gin.Context) {
	var req leasecontractdomain.RenewLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leaseSvc.Renew(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CreateTaxTemplate(c *gin.Context) {
	var req leasecontractdomain.CreateTaxTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.leaseSvc.CreateTaxTemplate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) transitionLease(c *gin.Context, fn func(ctx context.Context, id string) (leasecontractdomain.LeaseContract, error)) {
	resp, err := fn(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
