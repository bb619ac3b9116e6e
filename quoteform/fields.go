package quoteform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/princinho/o3dstudio/models"
)

const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldProjectName     = "projectName"
	FieldDescription     = "description"
	FieldMaterial        = "material"
	FieldFinish          = "finish"
	FieldQuantity        = "quantity"
	FieldDeliveryType    = "deliveryType"
	FieldShippingAddress = "shippingAddress"
)

// FieldNames lists the form inputs in the order they are rendered.
var FieldNames = []string{
	FieldName,
	FieldEmail,
	FieldProjectName,
	FieldDescription,
	FieldMaterial,
	FieldFinish,
	FieldQuantity,
	FieldDeliveryType,
	FieldShippingAddress,
}

var ErrUnknownField = errors.New("unknown form field")

// FieldError rejects a single input change. The request is left untouched.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// applyField merges one input value into r, the way a change event on that
// input would.
func applyField(r *models.ProjectQuoteRequest, name, value string) error {
	switch name {
	case FieldName:
		r.Name = value
	case FieldEmail:
		r.Email = value
	case FieldProjectName:
		r.ProjectName = value
	case FieldDescription:
		r.Description = value
	case FieldFinish:
		r.Finish = value
	case FieldShippingAddress:
		r.ShippingAddress = value
	case FieldMaterial:
		m, ok := models.ParseMaterial(value)
		if !ok {
			return &FieldError{Field: name, Reason: fmt.Sprintf("unknown material %q", value)}
		}
		r.Material = m
	case FieldDeliveryType:
		d, ok := models.ParseDeliveryTier(value)
		if !ok {
			return &FieldError{Field: name, Reason: fmt.Sprintf("unknown delivery type %q", value)}
		}
		r.DeliveryType = d
	case FieldQuantity:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return &FieldError{Field: name, Reason: "must be a positive whole number"}
		}
		r.Quantity = n
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// fieldValues renders r as the flat name/value pairs a form carries.
func fieldValues(r models.ProjectQuoteRequest) map[string]string {
	return map[string]string{
		FieldName:            r.Name,
		FieldEmail:           r.Email,
		FieldProjectName:     r.ProjectName,
		FieldDescription:     r.Description,
		FieldMaterial:        string(r.Material),
		FieldFinish:          r.Finish,
		FieldQuantity:        strconv.Itoa(r.Quantity),
		FieldDeliveryType:    string(r.DeliveryType),
		FieldShippingAddress: r.ShippingAddress,
	}
}
