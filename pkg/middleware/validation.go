package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hrops-platform/scheduling-service/pkg/errors"
)

var validateOnce sync.Once

// Identifier fields share one shape: natural keys from the HR system,
// not UUIDs. safe_string blocks control characters in free-text fields.
var (
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)
	clockTimeRegex  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	isoDateRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	safeStringRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?@#$%&*()+=:;'"<>\/\[\]{}|\\~\x60]+$`)
)

var customValidators = map[string]validator.Func{
	"employee_id": regexValidator(identifierRegex),
	"store_id":    regexValidator(identifierRegex),
	"shift_id":    regexValidator(identifierRegex),
	"clock_time":  regexValidator(clockTimeRegex),
	"iso_date":    regexValidator(isoDateRegex),
	"safe_string": regexValidator(safeStringRegex),
	"role":        validateRole,
}

// InitValidator registers the scheduling-domain validation tags on gin's
// binding engine. Called once from Setup; later calls are no-ops.
func InitValidator() {
	validateOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range customValidators {
			_ = v.RegisterValidation(tag, fn)
		}
		// Error messages should name the JSON field, not the Go field.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})
	})
}

func regexValidator(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "employee", "planner", "manager", "admin":
		return true
	}
	return false
}

// SanitizeString strips null bytes and surrounding whitespace.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// InputSanitizer cleans query parameter values before handlers read them.
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		for key, values := range query {
			for i, v := range values {
				values[i] = SanitizeString(v)
			}
			query[key] = values
		}
		c.Request.URL.RawQuery = query.Encode()

		c.Next()
	}
}

// ContentType rejects mutating requests whose body is not JSON. Requests
// with an empty body pass, since several transitions take no payload.
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "POST", "PUT", "PATCH":
			contentType := c.GetHeader("Content-Type")
			if !strings.HasPrefix(contentType, "application/json") && c.Request.ContentLength > 0 {
				AbortWithAppError(c, &errors.AppError{
					Code:       "INVALID_CONTENT_TYPE",
					Message:    "Content-Type must be application/json",
					HTTPStatus: 415,
				})
				return
			}
		}
		c.Next()
	}
}
