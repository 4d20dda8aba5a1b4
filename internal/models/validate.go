package models

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// isodate accepts an empty value; pair it with required when needed
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(JoiningDateLayout, s)
		return err == nil
	})

	return v
}

// fieldMessages maps "field" or "field.tag" to the message shown to users
var fieldMessages = map[string]string{
	"category":             "Please select a category",
	"category.oneof":       "Please select a valid category",
	"reason":               "Please provide a detailed reason (at least 10 characters)",
	"priority":             "Priority must be one of low, normal or high",
	"employee_name":        "Employee name is required",
	"joining_date":         "Joining date is required",
	"joining_date.isodate": "Joining date must be a valid date (YYYY-MM-DD)",
	"email":                "Invalid email or password",
	"password":             "Invalid email or password",
	"purchase_date":        "Purchase date must use DD/MM/YYYY",
	"status":               "Status must be one of Available, Assigned, Maintenance or Retired",
	"condition":            "Condition must be one of good, fair or damaged",
	"assignee":             "Assignee is required",
	"description":          "Description is required",
	"cost":                 "Cost cannot be negative",
}

// ValidateStruct runs the struct tags of v and returns one message per
// failing field, keyed by JSON name. It returns nil when v is valid.
func ValidateStruct(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageFor(field, fe)
	}
	return out
}

func messageFor(field string, fe validator.FieldError) string {
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of " + fe.Param()
	default:
		return field + " is invalid"
	}
}
