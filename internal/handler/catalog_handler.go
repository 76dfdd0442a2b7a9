package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/service"
)

type catalogPathPayload struct {
	Path string `json:"path"`
}

// GetCatalog returns the loaded foods in display order.
func (a *API) GetCatalog(c *gin.Context) {
	status := a.catalogs.Status()
	catalog, err := a.catalogs.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "catalog": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalog": status, "foods": catalog.Foods()})
}

// UploadCatalog 用上传的文件或给定的路径替换当前目录，已录入的记录保持不变
func (a *API) UploadCatalog(c *gin.Context) {
	var (
		catalog *service.Catalog
		err     error
	)

	if file, formErr := c.FormFile("catalog"); formErr == nil {
		src, openErr := file.Open()
		if openErr != nil {
			a.handleIntakeError(c, fmt.Errorf("%w: %v", service.ErrCatalogUnreadable, openErr))
			return
		}
		defer src.Close()
		catalog, err = a.catalogs.LoadUpload(file.Filename, src)
	} else {
		var payload catalogPathPayload
		if isJSONRequest(c) {
			if !bindJSON(c, &payload, "invalid catalog payload") {
				return
			}
		} else {
			payload.Path = c.PostForm("path")
		}
		catalog, err = a.catalogs.LoadPath(payload.Path)
	}
	if err != nil {
		a.handleIntakeError(c, err)
		return
	}

	a.succeed(c, gin.H{"catalog": a.catalogs.Status()},
		fmt.Sprintf("CSV loaded: %s (%d foods)", catalog.Source(), catalog.Len()))
}
