package dto

import (
	"github.com/princinho/o3dstudio/models"
)

// CreateQuoteRequestDTO is the one-shot submission body. Omitted optional
// fields take the form defaults; required fields are checked after trimming.
type CreateQuoteRequestDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProjectName     string `json:"projectName"`
	Description     string `json:"description"`
	Material        string `json:"material"`
	Finish          string `json:"finish"`
	Quantity        *int   `json:"quantity"`
	DeliveryType    string `json:"deliveryType"`
	ShippingAddress string `json:"shippingAddress"`

	Advisory *models.AdvisoryResult `json:"advisory"`
}

func (d CreateQuoteRequestDTO) ToModel() models.ProjectQuoteRequest {
	req := models.NewProjectQuoteRequest()
	req.Name = d.Name
	req.Email = d.Email
	req.ProjectName = d.ProjectName
	req.Description = d.Description
	if d.Material != "" {
		req.Material = models.Material(d.Material)
	}
	if d.Finish != "" {
		req.Finish = d.Finish
	}
	if d.Quantity != nil {
		req.Quantity = *d.Quantity
	}
	if d.DeliveryType != "" {
		req.DeliveryType = models.DeliveryTier(d.DeliveryType)
	}
	req.ShippingAddress = d.ShippingAddress
	return req
}

type UpdateQuoteStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

type CreateQuoteNoteDTO struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}
