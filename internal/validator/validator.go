package validator

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations and the custom
// rules on Gin's binding engine. Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		v.RegisterValidation("difficulty_distribution", validateDifficultyDistribution)

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		en_translations.RegisterDefaultTranslations(v, trans)

		v.RegisterTranslation("difficulty_distribution", trans,
			func(ut ut.Translator) error {
				return ut.Add("difficulty_distribution", "{0} must use keys easy, medium, hard with non-negative values summing to 1 (or 100)", true)
			},
			func(ut ut.Translator, fe govalidator.FieldError) string {
				t, _ := ut.T("difficulty_distribution", fe.Field())
				return t
			})
	}
}

// validateDifficultyDistribution accepts fractional distributions that sum
// to 1 as well as percent-style ones that sum to 100. Unknown difficulty
// keys and negative weights are rejected.
func validateDifficultyDistribution(fl govalidator.FieldLevel) bool {
	m, ok := fl.Field().Interface().(map[string]float64)
	if !ok {
		return false
	}
	var sum float64
	for k, v := range m {
		switch k {
		case "easy", "medium", "hard":
		default:
			return false
		}
		if v < 0 {
			return false
		}
		sum += v
	}
	return math.Abs(sum-1) < 0.001 || math.Abs(sum-100) < 0.1
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
