package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics turns a recovered panic into a 500 JSON error
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error().Str("path", c.Request.URL.Path).Interface("panic", recovered).Msg("Recovered from panic")

		message := "internal server error"
		if err, ok := recovered.(error); ok {
			message = err.Error()
		} else if recovered != nil {
			message = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
