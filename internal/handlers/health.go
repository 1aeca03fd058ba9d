package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/response"
)

// Health returns a status payload useful for readiness checks. When a database
// handle is supplied the underlying connection is pinged as well.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}

		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				response.Success(c, http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}

		response.Success(c, http.StatusOK, status)
	}
}
