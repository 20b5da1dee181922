// Package validation provides struct validation and input sanitization
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/alchemorsel/marco/pkg/errors"
)

// MaxDescriptionLength bounds recipe descriptions, in characters, after sanitization
const MaxDescriptionLength = 500

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	scriptRegex     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// ValidationService validates structs against their validate tags
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation rules
	_ = validate.RegisterValidation("no_html", validateNoHTML)
	_ = validate.RegisterValidation("printable", validatePrintable)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

// Struct validates v. Field failures come back as apperrors.ValidationErrors
// whose message joins one readable line per field.
func (v *ValidationService) Struct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(apperrors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldName(fe),
			Tag:     fe.Tag(),
			Message: describe(fe),
		})
	}
	v.logger.Debug("Validation failed", zap.Strings("fields", out.Fields()))
	return out
}

// SanitizeDescription strips markup from free text and collapses whitespace
func (v *ValidationService) SanitizeDescription(input string) string {
	result := scriptRegex.ReplaceAllString(input, "")
	result = htmlTagRegex.ReplaceAllString(result, "")
	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, result)
	result = strings.TrimSpace(whitespaceRegex.ReplaceAllString(result, " "))

	if runes := []rune(result); len(runes) > MaxDescriptionLength {
		result = strings.TrimSpace(string(runes[:MaxDescriptionLength]))
	}
	return result
}

// SanitizeList trims entries, lowercases them and drops empty or repeated ones
func (v *ValidationService) SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.ToLower(v.SanitizeDescription(it))
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// fieldName is the namespace without the root struct name
func fieldName(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return field
}

func describe(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "no_html":
		return fmt.Sprintf("%s must not contain markup", field)
	case "printable":
		return fmt.Sprintf("%s must not contain control characters", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// validateNoHTML rejects strings containing tags
func validateNoHTML(fl validator.FieldLevel) bool {
	return !htmlTagRegex.MatchString(fl.Field().String())
}

// validatePrintable rejects control characters other than whitespace
func validatePrintable(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
