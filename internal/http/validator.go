package http

import (
	"fmt"
	"strings"

	"libraryapi/internal/httpx"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("student_id", validateStudentID)
}

// validateStudentID accepts the external identifier format: a non-empty
// string without whitespace. Cohort-coded identifiers such as "IA25-001"
// are the common case, but identifiers outside that pattern are legal and
// simply report into the "Unknown" cohort.
func validateStudentID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, " \t\n")
}

// ValidateStruct runs struct tags and renders the failures as response
// details.
func ValidateStruct(s interface{}) []httpx.ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []httpx.ErrorDetail
	for _, fieldErr := range err.(validator.ValidationErrors) {
		field := fieldErr.Field()
		var message string
		switch fieldErr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
		case "student_id":
			message = fmt.Sprintf("%s must be a non-empty identifier without spaces", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		details = append(details, httpx.ErrorDetail{
			Field:   fieldName,
			Message: message,
		})
	}
	return details
}
