package models

type Material string

const (
	MaterialPLA    Material = "PLA"
	MaterialPETG   Material = "PETG"
	MaterialABS    Material = "ABS"
	MaterialTPU    Material = "TPU"
	MaterialResin  Material = "Resin"
	MaterialNylon  Material = "Nylon"
	MaterialUnsure Material = "Unsure" // customer asked the studio to choose
)

// KnownMaterials lists the selectable materials in display order, without the Unsure sentinel.
var KnownMaterials = []Material{
	MaterialPLA,
	MaterialPETG,
	MaterialABS,
	MaterialTPU,
	MaterialResin,
	MaterialNylon,
}

func ParseMaterial(v string) (Material, bool) {
	if Material(v) == MaterialUnsure {
		return MaterialUnsure, true
	}
	for _, m := range KnownMaterials {
		if string(m) == v {
			return m, true
		}
	}
	return "", false
}

type DeliveryTier string

const (
	DeliveryStandard  DeliveryTier = "Standard"
	DeliveryExpedited DeliveryTier = "Expedited"
)

func ParseDeliveryTier(v string) (DeliveryTier, bool) {
	switch DeliveryTier(v) {
	case DeliveryStandard, DeliveryExpedited:
		return DeliveryTier(v), true
	}
	return "", false
}

const DefaultFinish = "Natural"

// ProjectQuoteRequest is the project-request form as the customer fills it in.
// The binding tags follow gin's convention and are checked on every
// submission path after trimming.
type ProjectQuoteRequest struct {
	Name            string       `json:"name"            bson:"name"            binding:"required"`
	Email           string       `json:"email"           bson:"email"           binding:"required,email"`
	ProjectName     string       `json:"projectName"     bson:"projectName"     binding:"required"`
	Description     string       `json:"description"     bson:"description"     binding:"required"`
	Material        Material     `json:"material"        bson:"material"        binding:"required,oneof=PLA PETG ABS TPU Resin Nylon Unsure"`
	Finish          string       `json:"finish"          bson:"finish"`
	Quantity        int          `json:"quantity"        bson:"quantity"        binding:"gte=1"`
	DeliveryType    DeliveryTier `json:"deliveryType"    bson:"deliveryType"    binding:"oneof=Standard Expedited"`
	ShippingAddress string       `json:"shippingAddress" bson:"shippingAddress" binding:"required"`
}

// NewProjectQuoteRequest returns an empty request with the form defaults applied.
func NewProjectQuoteRequest() ProjectQuoteRequest {
	return ProjectQuoteRequest{
		Material:     MaterialPLA,
		Finish:       DefaultFinish,
		Quantity:     1,
		DeliveryType: DeliveryStandard,
	}
}

// ApplyDefaults fills the optional fields left blank by a client.
func (r *ProjectQuoteRequest) ApplyDefaults() {
	if r.Material == "" {
		r.Material = MaterialPLA
	}
	if r.Finish == "" {
		r.Finish = DefaultFinish
	}
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	if r.DeliveryType == "" {
		r.DeliveryType = DeliveryStandard
	}
}
