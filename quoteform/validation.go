package quoteform

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/princinho/o3dstudio/models"
)

var validate = newValidator()

// newValidator reads the same binding tags gin uses so the form and the
// one-shot endpoint agree on what a complete request is.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists the offending fields by their form name together with
// the rule they broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.FieldNames(), ", ")
}

func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Normalize trims the free-text inputs.
func Normalize(r models.ProjectQuoteRequest) models.ProjectQuoteRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.ProjectName = strings.TrimSpace(r.ProjectName)
	r.Description = strings.TrimSpace(r.Description)
	r.Finish = strings.TrimSpace(r.Finish)
	r.ShippingAddress = strings.TrimSpace(r.ShippingAddress)
	return r
}

// Validate checks an already normalized request.
func Validate(r models.ProjectQuoteRequest) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate quote request: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}
