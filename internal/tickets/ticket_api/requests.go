package ticket_api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ms-rsvp/internal/models"
	"ms-rsvp/internal/tickets/codegen"
	"ms-rsvp/internal/utils"
)

type CreateTicketsRequest struct {
	Type     string `json:"type" validate:"required,oneof=regular vip"`
	Quantity int    `json:"quantity" validate:"min=1,max=100"`
}

type PreferencesRequest struct {
	DietaryNeeds []string `json:"dietary_needs" validate:"required,min=1,unique,dive,oneof=vegetarian vegan gluten-free dairy-free nut-allergies no-restrictions"`
	MealChoice   string   `json:"meal_choice" validate:"required,oneof=chicken beef fish vegetarian"`
}

type RequestTicketRequest struct {
	Type string `json:"type" validate:"required,oneof=regular vip"`
	PreferencesRequest
}

func (p PreferencesRequest) toPreferences() models.Preferences {
	needs := make([]models.DietaryNeed, len(p.DietaryNeeds))
	for i, need := range p.DietaryNeeds {
		needs[i] = models.DietaryNeed(need)
	}
	return models.Preferences{
		DietaryNeeds: needs,
		MealChoice:   models.MealChoice(p.MealChoice),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("ticketcode", func(fl validator.FieldLevel) bool {
		return codegen.Valid(fl.Field().String())
	})
	return v
}

// fieldErrors flattens validator output into response details.
func fieldErrors(err error) []utils.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make([]utils.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field == "" {
			field = "code"
		}
		details = append(details, utils.FieldError{Field: field, Message: describe(fe)})
	}
	return details
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "unique":
		return "must not repeat a value"
	case "ticketcode":
		return "must be three letters followed by five digits"
	}
	return "is invalid"
}
