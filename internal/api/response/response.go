package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes {"success": true, ...fields} with status 200.
func Success(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail writes {"success": false, "message": msg} with the given status.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": msg,
	})
}

func NotFound(c *gin.Context, msg string) {
	Fail(c, http.StatusNotFound, msg)
}

func BadRequest(c *gin.Context, msg string) {
	Fail(c, http.StatusBadRequest, msg)
}
