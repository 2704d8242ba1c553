package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// SetupValidator registers the custom tags on gin's validator and reports
// field names by their JSON or form tag. It is safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		RegisterValidations(v)
	})
}

// RegisterValidations adds the financing tags to v:
//
//	plan_mode        CASH, IN_HOUSE, CARD or COMPANY
//	commission_mode  collected or listBased
//	party            seller or alliance
//	payment_method   CASH, TRANSFER, DEPOSIT, CARD or DEBIT_CARD
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("plan_mode", func(fl validator.FieldLevel) bool {
		return financing.PlanMode(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("commission_mode", func(fl validator.FieldLevel) bool {
		return financing.CommissionMode(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("party", func(fl validator.FieldLevel) bool {
		return trade.CommissionParty(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return financing.PaymentMethod(fl.Field().String()).IsValid()
	})
}

// ValidationDetails lists the rejected fields of err. It returns nil when err
// is not a validation failure.
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

// HandleValidationError writes the 400 response for a binding error.
// Malformed bodies are reported as ERR_INVALID_JSON.
func HandleValidationError(c *gin.Context, err error) {
	requestID := GetRequestID(c)
	if details := ValidationDetails(err); details != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewValidationErrorResponse("Request validation failed", requestID, details))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Malformed request body", requestID))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "plan_mode":
		return "Must be one of: CASH IN_HOUSE CARD COMPANY"
	case "commission_mode":
		return "Must be one of: collected listBased"
	case "party":
		return "Must be one of: seller alliance"
	case "payment_method":
		return "Must be one of: CASH TRANSFER DEPOSIT CARD DEBIT_CARD"
	default:
		return "Invalid value"
	}
}
