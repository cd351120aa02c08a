package models

// ProjectInput is the wire shape of a create/replace/patch body. Pointer
// fields let the validator tell omitted keys from empty values.
type ProjectInput struct {
	Title    *string        `json:"title,omitempty" example:"Spring Collection"`
	Category *string        `json:"category,omitempty" example:"Fashion"`
	ImageURL *string        `json:"imageUrl,omitempty" example:"/uploads/3f0c.jpg"`
	Metadata *MetadataInput `json:"metadata,omitempty"`
}

type MetadataInput struct {
	ISO      *string `json:"iso,omitempty" example:"100"`
	Aperture *string `json:"aperture,omitempty" example:"f/2.8"`
	Shutter  *string `json:"shutter,omitempty" example:"1/250"`
	Date     *string `json:"date,omitempty" example:"2024-05-01"`
}
