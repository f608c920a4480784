package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cogui/internal/config"
	"cogui/internal/handlers"
	"cogui/internal/session"
)

const pipelineSessionKey = "pipelineID"

// PipelineSession resolves the caller's pipeline from the cookie session,
// creating both on first contact, and stores it in the request context.
func PipelineSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		id, _ := sess.Get(pipelineSessionKey).(string)
		pipeline := manager.GetOrCreate(id)
		if pipeline.ID != id {
			sess.Set(pipelineSessionKey, pipeline.ID)
			if err := sess.Save(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
				return
			}
		}

		c.Set(handlers.ContextPipelineKey, pipeline)
		c.Next()
	}
}

// AdminRequired gates destructive endpoints behind the configured admin
// token. With no hash configured the endpoints stay open, which is the
// expected single-user deployment.
func AdminRequired(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := config.Conf.Server.AdminTokenHash
		if hash == "" {
			c.Next()
			return
		}
		token := c.GetHeader("X-Admin-Token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin token required"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
			log.Warn("Rejected admin token", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin token"})
			return
		}
		c.Next()
	}
}
