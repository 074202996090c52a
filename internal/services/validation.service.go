package services

import (
	"cinestream/internal/types"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationService checks request DTOs against their `validate` tags and
// reports failures as a ValidationError keyed by json field name.
type ValidationService struct {
	validate *validator.Validate
}

func NewValidationService() *ValidationService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	return &ValidationService{validate: validate}
}

func (s *ValidationService) Struct(value any) error {
	err := s.validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	validationErr := &types.ValidationError{}
	for _, fieldErr := range fieldErrors {
		validationErr.Add(fieldPath(fieldErr), fieldMessage(fieldErr))
	}
	return validationErr
}

// fieldPath drops the top-level struct name: "CreateMediaRequest.genreIds[0]" -> "genreIds[0]".
func fieldPath(fieldErr validator.FieldError) string {
	namespace := fieldErr.Namespace()
	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}
	return fieldErr.Field()
}

func fieldMessage(fieldErr validator.FieldError) string {
	param := fieldErr.Param()

	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is not set", lowerFirst(param))
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", lowerFirst(param))
	case "min":
		if isLengthKind(fieldErr.Kind()) {
			return fmt.Sprintf("must contain at least %s characters", param)
		}
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		if isLengthKind(fieldErr.Kind()) {
			return fmt.Sprintf("must contain at most %s characters", param)
		}
		return fmt.Sprintf("must be at most %s", param)
	case "gte":
		return fmt.Sprintf("must be at least %s", param)
	case "lte":
		return fmt.Sprintf("must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(param, " ", ", "))
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color such as #1A2B3C"
	case "numeric":
		return "must be numeric"
	case "gt":
		return fmt.Sprintf("must be greater than %s", param)
	case "dive":
		return "is invalid"
	default:
		return fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
}

func isLengthKind(kind reflect.Kind) bool {
	return kind == reflect.String || kind == reflect.Slice || kind == reflect.Map
}

// lowerFirst maps a Go field name parameter (MediaID) to its json spelling (mediaId).
func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
