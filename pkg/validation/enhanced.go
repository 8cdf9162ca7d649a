package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the main validator instance with the metric-specific
// rules registered
var Validate *validator.Validate

var (
	metricNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	runIDPattern      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	uuid4Pattern      = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

func init() {
	Validate = validator.New()

	// Register custom validation functions
	Validate.RegisterValidation("metric_name", validateMetricName)
	Validate.RegisterValidation("metric_kind", validateMetricKind)
	Validate.RegisterValidation("dtype", validateDType)
	Validate.RegisterValidation("run_id", validateRunID)
	Validate.RegisterValidation("shape", validateShape)
	Validate.RegisterValidation("uuid4", validateUUID4)

	// Register tag name function to use JSON tags for field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateWithPlayground validates using go-playground/validator
func ValidateWithPlayground(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to our custom format
func formatValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Value:   fieldError.Value(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errors
}

// getErrorMessage returns a human-readable error message
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "metric_name":
		return "must be a valid metric name (snake_case, starting with a letter)"
	case "metric_kind":
		return "must be a valid metric kind identifier"
	case "dtype":
		return "must be a valid dtype (float32, float64, int32, int64)"
	case "run_id":
		return "must be a valid run identifier (alphanumeric, underscore, hyphen)"
	case "shape":
		return "must be a valid shape (non-negative dimensions)"
	case "uuid4":
		return "must be a valid UUID v4"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

// validateMetricName validates metric variable/instance name format.
// Auto-generated names are snake_case with an optional numeric suffix,
// so the same pattern covers both
func validateMetricName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && len(name) <= 100 && metricNamePattern.MatchString(name)
}

// validateMetricKind validates registry kind identifiers; kinds follow
// the same snake_case convention as names
func validateMetricKind(fl validator.FieldLevel) bool {
	kind := fl.Field().String()
	return kind != "" && len(kind) <= 50 && metricNamePattern.MatchString(kind)
}

// validateDType validates data type values
func validateDType(fl validator.FieldLevel) bool {
	dtype := fl.Field().String()
	switch dtype {
	case "float32", "float64", "int32", "int64":
		return true
	}
	return false
}

// validateRunID validates run identifier format
func validateRunID(fl validator.FieldLevel) bool {
	runID := fl.Field().String()
	return runID != "" && len(runID) <= 100 && runIDPattern.MatchString(runID)
}

// validateShape validates that a shape slice has no negative dimensions
func validateShape(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < field.Len(); i++ {
		if field.Index(i).Int() < 0 {
			return false
		}
	}
	return true
}

// validateUUID4 validates UUID v4 format
func validateUUID4(fl validator.FieldLevel) bool {
	return uuid4Pattern.MatchString(fl.Field().String())
}
