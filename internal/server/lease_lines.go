package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
)

func (s *Server) RecomputeLeaseLines(c *gin.Context) {
	var req leaselinedomain.RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc := s.lineSvc.Recompute(c.Request.Context(), req.Lines)
	c.JSON(http.StatusOK, gin.H{"data": doc})
}
