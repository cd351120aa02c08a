package models

type Category string

const (
	CategoryFashion      Category = "Fashion"
	CategoryWedding      Category = "Wedding"
	CategoryKunquOpera   Category = "Kunqu Opera"
	CategoryDanceTheater Category = "Dance/Theater"
	CategoryStyling      Category = "Styling"
)

// Categories lists every accepted project category in display order.
var Categories = []Category{
	CategoryFashion,
	CategoryWedding,
	CategoryKunquOpera,
	CategoryDanceTheater,
	CategoryStyling,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Metadata holds the shooting parameters of a portfolio image. It is either
// absent or fully populated.
type Metadata struct {
	ISO      string `json:"iso"`
	Aperture string `json:"aperture"`
	Shutter  string `json:"shutter"`
	Date     string `json:"date"`
}

type Project struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category Category  `json:"category"`
	ImageURL string    `json:"imageUrl"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Clone returns a deep copy so callers never share metadata with the store.
func (p Project) Clone() Project {
	if p.Metadata != nil {
		m := *p.Metadata
		p.Metadata = &m
	}
	return p
}

// ProjectDraft is a validated create/replace payload. It becomes a Project
// once the service assigns an id.
type ProjectDraft struct {
	Title    string
	Category Category
	ImageURL string
	Metadata *Metadata
}

func (d ProjectDraft) WithID(id string) Project {
	return Project{
		ID:       id,
		Title:    d.Title,
		Category: d.Category,
		ImageURL: d.ImageURL,
		Metadata: d.Metadata,
	}.Clone()
}

// ProjectPatch is a validated partial update. Nil fields are left untouched.
// MetadataSet distinguishes "metadata omitted" from "metadata cleared".
type ProjectPatch struct {
	Title       *string
	Category    *Category
	ImageURL    *string
	Metadata    *Metadata
	MetadataSet bool
}

// Apply merges the patch onto p and returns the result.
func (pt ProjectPatch) Apply(p Project) Project {
	next := p.Clone()
	if pt.Title != nil {
		next.Title = *pt.Title
	}
	if pt.Category != nil {
		next.Category = *pt.Category
	}
	if pt.ImageURL != nil {
		next.ImageURL = *pt.ImageURL
	}
	if pt.MetadataSet {
		next.Metadata = nil
		if pt.Metadata != nil {
			m := *pt.Metadata
			next.Metadata = &m
		}
	}
	return next
}
