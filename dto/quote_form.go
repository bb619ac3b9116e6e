package dto

type AdvisoryRequestDTO struct {
	Description string `json:"description"`
}

// UpdateFieldsDTO maps form field names to their raw input values.
type UpdateFieldsDTO map[string]string
