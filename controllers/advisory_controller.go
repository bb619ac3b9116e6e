package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/princinho/o3dstudio/dto"
	"github.com/princinho/o3dstudio/quoteform"
)

// RequestAdvisory is the stateless advisory endpoint: one description in,
// one structured advisory out.
func RequestAdvisory(advisor quoteform.Advisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AdvisoryRequestDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_body"})
			return
		}
		if advisor == nil {
			respondError(c, quoteform.ErrNoAdvisor)
			return
		}

		result, err := advisor.RequestAdvisory(c.Request.Context(), body.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
