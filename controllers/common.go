package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/princinho/o3dstudio/utils"
)

func pageParams(c *gin.Context) (page, limit int, skip int64) {
	return utils.Paging(c.Query("page"), c.Query("limit"), defaultQuoteLimit, maxQuoteLimit)
}
