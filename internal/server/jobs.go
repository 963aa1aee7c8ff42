package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunJob runs one scheduler job synchronously, outside the scheduler loop.
func (s *Server) RunJob(c *gin.Context) {
	if s.jobs == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	job := strings.TrimSpace(c.Param("job"))
	result, err := s.jobs.RunJob(c.Request.Context(), job)
	if err != nil {
		s.log.Warn("manual job run failed", zap.String("job", job), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
