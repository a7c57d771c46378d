// Package respond centralizes the JSON envelope and the error-to-status
// mapping used by every HTTP handler.
package respond

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/branchly/inventory-service/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func Paginated(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

// Error maps the apperr taxonomy onto HTTP status codes. Anything outside
// the taxonomy is a persistence or programming failure and surfaces as a
// generic 500 so internals never leak to the dashboard.
func Error(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	var authorization *apperr.AuthorizationError
	var insufficient *apperr.InsufficientStockError
	var notFound *apperr.NotFoundError

	switch {
	case errors.As(err, &validation), errors.As(err, &insufficient):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &authorization):
		fail(c, http.StatusForbidden, err.Error())
	case errors.As(err, &notFound):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// BindError renders gin binding failures, flattening validator field
// errors into one readable message.
func BindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
		}
		fail(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}
	fail(c, http.StatusBadRequest, "invalid request body")
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}
