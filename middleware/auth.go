package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/models"
)

const submissionContextKey = "submission"

// SubmissionAuth gates every authenticated submission operation. The caller
// must present the (submissionId, accessToken) pair via headers or query
// parameters. The response never reveals which half of the pair was wrong.
func SubmissionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		submissionID := c.GetHeader("X-Submission-Id")
		if submissionID == "" {
			submissionID = c.Query("submissionId")
		}
		accessToken := c.GetHeader("X-Access-Token")
		if accessToken == "" {
			accessToken = c.Query("accessToken")
		}

		authorizeSubmission(c, submissionID, accessToken)
	}
}

// DownloadAuth authorizes the capability-URL download routes: the submission
// ID comes from the path and the access token from the query string.
func DownloadAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		submissionID := c.Param("submissionId")
		accessToken := c.Query("accessToken")

		authorizeSubmission(c, submissionID, accessToken)
	}
}

func authorizeSubmission(c *gin.Context, submissionID, accessToken string) {
	if submissionID == "" || accessToken == "" {
		log.Printf("[Auth] 401 Unauthorized: missing credentials for %s", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_CREDENTIALS",
				"message": "Missing submissionId or accessToken",
			},
		})
		return
	}

	db := config.GetDB()
	var submission models.Submission
	if err := db.Where("id = ? AND access_token = ?", submissionID, accessToken).First(&submission).Error; err != nil {
		log.Printf("[Auth] 403 Forbidden: invalid credentials for submissionId: %s", submissionID)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Invalid submissionId or accessToken",
			},
		})
		return
	}

	c.Set(submissionContextKey, &submission)
	c.Next()
}

// GetSubmission extracts the authorized submission from the Gin context
func GetSubmission(c *gin.Context) (*models.Submission, bool) {
	value, exists := c.Get(submissionContextKey)
	if !exists {
		return nil, false
	}
	submission, ok := value.(*models.Submission)
	return submission, ok
}

// AdminAuth gates the admin surface with the shared secret. When the secret
// is not configured the routes fail closed.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.AdminEnabled() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ADMIN_DISABLED",
					"message": "Admin routes are disabled: ADMIN_TOKEN is not configured",
				},
			})
			return
		}

		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			token = c.Query("adminToken")
		}
		if token == "" {
			var body struct {
				AdminToken string `json:"adminToken"`
			}
			// Buffered bind so the handler can still read the body
			if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
				token = body.AdminToken
			}
		}

		if token != cfg.AdminToken {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ADMIN_TOKEN",
					"message": "Invalid admin token",
				},
			})
			return
		}

		c.Next()
	}
}
