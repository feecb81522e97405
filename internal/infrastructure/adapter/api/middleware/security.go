package middleware

import (
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/dto"
)

const maxContentTypeLength = 256

// multipartBoundaryPattern matches the boundary grammar from RFC 2046
// section 5.1.1, capped at 70 characters.
var multipartBoundaryPattern = regexp.MustCompile(`^[a-zA-Z0-9'()+_,\-./:=? ]{1,70}$`)

// MultipartHygiene rejects multipart requests with malformed or oversized
// Content-Type headers before the body is parsed. Non-multipart requests
// pass through untouched.
func MultipartHygiene() gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.GetHeader("Content-Type")
		if contentType == "" || !strings.HasPrefix(contentType, "multipart/form-data") {
			c.Next()
			return
		}

		if len(contentType) > maxContentTypeLength {
			abortBadRequest(c, "content type header too long")
			return
		}

		_, params, err := mime.ParseMediaType(contentType)
		if err != nil {
			abortBadRequest(c, "malformed content type header")
			return
		}

		boundary := params["boundary"]
		if !multipartBoundaryPattern.MatchString(boundary) {
			abortBadRequest(c, "invalid multipart boundary")
			return
		}

		c.Next()
	}
}

func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    errs.ErrorCode(errs.ErrInvalidRequest),
		Message: message,
	})
}
