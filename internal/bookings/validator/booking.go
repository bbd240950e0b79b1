package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"kaycrm/pkg/daterange"
	"kaycrm/pkg/logger"
)

var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,63}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as field -> message for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// CreateBookingInput is the boundary shape of a create request. Dates stay
// strings until the range is built so malformed dates are reported per field.
type CreateBookingInput struct {
	CustomerID string `json:"customer_id" validate:"required,entity_id"`
	VehicleID  string `json:"vehicle_id" validate:"required,entity_id"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// ChangeStatusInput only requires a value. Whether the status is known and
// reachable is the lifecycle's decision.
type ChangeStatusInput struct {
	Status string `json:"status" validate:"required,max=32"`
}

type AvailabilityInput struct {
	VehicleID string `json:"vehicle_id" validate:"required,entity_id"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("entity_id", validateEntityID); err != nil {
		log.Fatal("Failed to register 'entity_id' validator",
			"error", err,
		)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateEntityID(fl validator.FieldLevel) bool {
	return idRegex.MatchString(fl.Field().String())
}

func (v *BookingValidator) ValidateCreate(in *CreateBookingInput) error {
	return v.validateStruct(in)
}

func (v *BookingValidator) ValidateChangeStatus(in *ChangeStatusInput) error {
	return v.validateStruct(in)
}

func (v *BookingValidator) ValidateAvailability(in *AvailabilityInput) error {
	return v.validateStruct(in)
}

// ValidateRange is the second step after field validation: the dates parse,
// so only their order can still be wrong.
func (v *BookingValidator) ValidateRange(start, end string) (daterange.Range, error) {
	return daterange.Parse(start, end)
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "entity_id":
			message = fmt.Sprintf("%s must be 1-64 letters, digits or _.:- characters", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
