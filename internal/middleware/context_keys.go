package middleware

import "github.com/gin-gonic/gin"

// operatorIDKey stores the authenticated operator's ID (the JWT subject).
const operatorIDKey = contextKey("operatorID")

// GetOperatorIDFromContext retrieves the authenticated operator ID.
// It returns the ID and a boolean indicating if it was found.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	operatorID, ok := c.Request.Context().Value(operatorIDKey).(string)
	if !ok || operatorID == "" {
		return "", false
	}
	return operatorID, true
}
