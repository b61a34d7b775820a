package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"regime-rotation/internal/api/models"
	"regime-rotation/internal/backtest"
	"regime-rotation/internal/training"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondRunError maps terminal pipeline errors onto 422 and anything else
// onto 500.
func respondRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, training.ErrInputIncomplete):
		respondError(c, http.StatusUnprocessableEntity, "INPUT_INCOMPLETE", err.Error())
	case errors.Is(err, backtest.ErrNoOverlappingDates):
		respondError(c, http.StatusUnprocessableEntity, "NO_OVERLAPPING_DATES", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// bindJSON binds the body, applies default tags and validates req. On
// failure it writes a 400 and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	if err := defaults.Set(req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return false
	}
	if err := validate.StructCtx(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: "request failed validation",
				Details: map[string]interface{}{"errors": validationErrors(err)},
			},
		})
		return false
	}
	return true
}

func validationErrors(err error) []models.ValidationError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []models.ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}
	out := make([]models.ValidationError, 0, len(ves))
	for _, e := range ves {
		ve := models.ValidationError{
			Code:    "ERR_" + strings.ToUpper(e.Tag()),
			Field:   e.Namespace(),
			Message: errorMessage(e),
		}
		if e.Param() != "" {
			ve.Params = map[string]interface{}{"value": e.Param()}
		}
		out = append(out, ve)
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is absent", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
