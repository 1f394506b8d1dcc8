package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
)

// acquireRequest is the wire request for single-resource acquisition.
type acquireRequest struct {
	URL   string `binding:"required" json:"url"`
	Title string `json:"title"`
}

// handleAcquire ingests a single URL and maps the discriminated outcome to
// the wire contract: Stored and Scraped are 200, Blocked is 403, Rejected
// is 400.
func handleAcquire(log logger.Interface, acquirer Acquirer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req acquireRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid request",
				"blocked": false,
				"reason":  err.Error(),
			})
			return
		}

		outcome := acquirer.Acquire(c.Request.Context(), domain.AcquisitionRequest{
			URL:   req.URL,
			Title: req.Title,
		})

		switch outcome.State {
		case domain.AcquisitionStored:
			c.JSON(http.StatusOK, gin.H{
				"success":      true,
				"file_url":     outcome.Locator,
				"file_path":    outcome.Path,
				"file_size":    outcome.SizeBytes,
				"content_type": outcome.ContentType,
				"folder":       outcome.Folder,
			})
		case domain.AcquisitionScraped:
			c.JSON(http.StatusOK, gin.H{
				"success":         true,
				"scraped":         true,
				"scraped_content": outcome.Content,
				"content_source":  outcome.ContentSource,
				"file_url":        outcome.Locator,
				"file_path":       outcome.Path,
				"file_size":       outcome.SizeBytes,
			})
		case domain.AcquisitionBlocked:
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "acquisition blocked",
				"blocked": true,
				"reason":  outcome.Reason,
			})
		default:
			log.Info("acquisition rejected", "url", req.URL, "reason", outcome.Reason)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "acquisition failed",
				"blocked": false,
				"reason":  outcome.Reason,
			})
		}
	}
}
