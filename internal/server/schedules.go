package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/masarmall/leasing/internal/export"
)

// GetSchedule always answers 200 for a valid id. Leases without a schedule render empty.
func (s *Server) GetSchedule(c *gin.Context) {
	resp, err := s.scheduleSvc.GetByLease(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportScheduleXLSX(c *gin.Context) {
	s.exportSchedule(c, export.FormatXLSX)
}

func (s *Server) ExportSchedulePDF(c *gin.Context) {
	s.exportSchedule(c, export.FormatPDF)
}

func (s *Server) exportSchedule(c *gin.Context, format export.Format) {
	ctx := c.Request.Context()
	rendered, err := s.scheduleSvc.GetByLease(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	file, err := s.exporter.Export(ctx, format, rendered)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
