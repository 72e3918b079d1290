package handlers

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
)

// validationMessages maps "field.tag" to the message reported to clients.
var validationMessages = map[string]string{
	"amount.required":          "Amount is required",
	"amount.decimalpositive":   "Amount must be greater than 0",
	"amount.decimalprecision":  "Amount must have at most 2 decimal places",
	"category.required":        "Category is required",
	"category.notblank":        "Category is required",
	"category.max":             "Category must not exceed 100 characters",
	"description.max":          "Description must not exceed 500 characters",
	"date.required":            "Date is required",
	"date.pastorpresent":       "Date cannot be in the future",
	"clientRequestId.required": "Client request ID is required",
	"clientRequestId.min":      "Client request ID must be between 10 and 100 characters",
	"clientRequestId.max":      "Client request ID must be between 10 and 100 characters",
	"sort.oneof":               "Sort must be one of: date_desc",
}

// RegisterCustomValidators installs the expense-specific validators on Gin's
// binding engine and teaches it to report fields by their wire names.
// Must be called once before routes are served.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// validator dives into plain struct fields instead of applying their
	// tags, so without these a missing amount or date binds as the zero
	// value and slips past required. Returning nil for the zero value makes
	// required fire with the field's "is required" message.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok && d != (decimal.Decimal{}) {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(domain.Date); ok && !d.IsZero() {
			return d.Time
		}
		return nil
	}, domain.Date{})

	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("decimalpositive", decimalPositive)
	_ = v.RegisterValidation("decimalprecision", decimalPrecision)
	_ = v.RegisterValidation("pastorpresent", pastOrPresent)
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// decimalPositive requires a strictly positive amount. The type func above
// hands amounts to the validators as their string form.
func decimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// decimalPrecision caps amounts at two fractional digits.
func decimalPrecision(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Exponent() >= -2
}

// pastOrPresent rejects calendar dates after today's date in UTC. The type
// func above hands dates to the validators as time.Time.
func pastOrPresent(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(domain.DateOf(time.Now()).Time)
}

// validationErrorsToFieldMap translates binding failures into the field-to-
// message map returned with "Validation failed" responses.
func validationErrorsToFieldMap(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if msg, ok := validationMessages[fe.Field()+"."+fe.Tag()]; ok {
			out[fe.Field()] = msg
			continue
		}
		out[fe.Field()] = "Invalid value"
	}
	return out
}
