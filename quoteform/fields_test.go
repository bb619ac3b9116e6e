package quoteform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princinho/o3dstudio/models"
)

func TestSetFieldMergesEachInput(t *testing.T) {
	c := newTestController(nil, nil)

	require.NoError(t, c.SetField(FieldMaterial, "Resin"))
	require.NoError(t, c.SetField(FieldMaterial, "Unsure"))
	require.NoError(t, c.SetField(FieldDeliveryType, "Expedited"))
	require.NoError(t, c.SetField(FieldQuantity, " 12 "))
	require.NoError(t, c.SetField(FieldFinish, "Sanded & primed"))

	r := c.Request()
	assert.Equal(t, models.MaterialUnsure, r.Material)
	assert.Equal(t, models.DeliveryExpedited, r.DeliveryType)
	assert.Equal(t, 12, r.Quantity)
	assert.Equal(t, "Sanded & primed", r.Finish)
}

func TestSetFieldRejectsBadShapes(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{FieldQuantity, "0"},
		{FieldQuantity, "-3"},
		{FieldQuantity, "two"},
		{FieldQuantity, "1.5"},
		{FieldMaterial, "Titanium"},
		{FieldMaterial, "pla"},
		{FieldDeliveryType, "Overnight"},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			c := newTestController(nil, nil)
			before := c.Request()

			err := c.SetField(tt.field, tt.value)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, before, c.Request())
		})
	}
}

func TestSetFieldUnknownName(t *testing.T) {
	c := newTestController(nil, nil)
	err := c.SetField("budget", "100")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestSetFieldsReportsOnlyRejected(t *testing.T) {
	c := newTestController(nil, nil)
	rejected := c.SetFields(map[string]string{
		FieldName:     "Grace",
		FieldQuantity: "lots",
		"colour":      "red",
	})

	assert.Len(t, rejected, 2)
	assert.Contains(t, rejected, FieldQuantity)
	assert.Contains(t, rejected, "colour")
	assert.Equal(t, "Grace", c.Request().Name)
}

func TestFieldValuesRoundTrip(t *testing.T) {
	want := models.ProjectQuoteRequest{
		Name:            "Ada Lovelace",
		Email:           "ada@example.com",
		ProjectName:     "Analytical Engine gear train",
		Description:     "Twelve interlocking brass-look gears, 40mm each",
		Material:        models.MaterialPETG,
		Finish:          "Polished",
		Quantity:        12,
		DeliveryType:    models.DeliveryExpedited,
		ShippingAddress: "Manchester, UK",
	}
	src := newTestController(nil, nil)
	for name, value := range fieldValues(want) {
		require.NoError(t, src.SetField(name, value))
	}
	require.Equal(t, want, src.Request())

	// rendering the form and replaying its change events gives the same request
	dst := newTestController(nil, nil)
	for _, name := range FieldNames {
		require.NoError(t, dst.SetField(name, src.FieldValues()[name]))
	}
	assert.Equal(t, want, dst.Request())
}

func TestFieldNamesCoverEveryValue(t *testing.T) {
	values := fieldValues(models.NewProjectQuoteRequest())
	assert.Len(t, values, len(FieldNames))
	for _, name := range FieldNames {
		assert.Contains(t, values, name)
	}
}

func TestValidate(t *testing.T) {
	complete := models.ProjectQuoteRequest{
		Name:            "Ada",
		Email:           "ada@example.com",
		ProjectName:     "Dragon",
		Description:     "A dragon",
		Material:        models.MaterialPLA,
		Quantity:        1,
		DeliveryType:    models.DeliveryStandard,
		ShippingAddress: "London",
	}
	require.NoError(t, Validate(complete))

	noFinish := complete
	noFinish.Finish = ""
	assert.NoError(t, Validate(noFinish), "finish is optional")

	blank := Normalize(models.ProjectQuoteRequest{
		Name:         "  ",
		Email:        " ",
		Material:     models.MaterialPLA,
		Quantity:     1,
		DeliveryType: models.DeliveryStandard,
	})
	var verr *ValidationError
	require.ErrorAs(t, Validate(blank), &verr)
	assert.Equal(t, []string{"description", "email", "name", "projectName", "shippingAddress"}, verr.FieldNames())
	assert.Equal(t, "required", verr.Fields["name"])

	badEmail := complete
	badEmail.Email = "ada-at-example"
	require.ErrorAs(t, Validate(badEmail), &verr)
	assert.Equal(t, "email", verr.Fields["email"])

	zeroQty := complete
	zeroQty.Quantity = 0
	require.ErrorAs(t, Validate(zeroQty), &verr)
	assert.Equal(t, "gte", verr.Fields["quantity"])
}
