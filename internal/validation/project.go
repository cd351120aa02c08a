// Package validation checks incoming project payloads and reports every
// problem as a field-level issue.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harry7799/heng-studio/internal/models"
)

const (
	MaxTitleLength = 120
	uploadsPrefix  = "/uploads/"

	categoryRules = "required,category"
	imageURLRules = "required,imageurl"
	metadataRules = "required"
)

var titleRules = "required,max=" + strconv.Itoa(MaxTitleLength)

type ProjectValidator struct {
	validate *validator.Validate
}

func NewProjectValidator() *ProjectValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		return IsImageURL(fl.Field().String())
	})
	return &ProjectValidator{validate: v}
}

// IsImageURL accepts local upload paths and well-formed absolute URLs.
func IsImageURL(v string) bool {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, uploadsPrefix) {
		return true
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return u.IsAbs() && (u.Host != "" || u.Opaque != "")
}

// ValidateCreate checks a full project payload, as used by create and replace.
func (v *ProjectValidator) ValidateCreate(body []byte) (models.ProjectDraft, error) {
	in, err := decodeInput(body)
	if err != nil {
		return models.ProjectDraft{}, err
	}

	title := strings.TrimSpace(deref(in.Title))
	category := deref(in.Category)
	imageURL := strings.TrimSpace(deref(in.ImageURL))

	var issues []models.Issue
	issues = append(issues, v.check("title", title, titleRules)...)
	issues = append(issues, v.check("category", category, categoryRules)...)
	issues = append(issues, v.check("imageUrl", imageURL, imageURLRules)...)
	meta, metaIssues := v.normalizeMetadata(in.Metadata)
	issues = append(issues, metaIssues...)

	if len(issues) > 0 {
		return models.ProjectDraft{}, models.NewValidationError(issues...)
	}
	return models.ProjectDraft{
		Title:    title,
		Category: models.Category(category),
		ImageURL: imageURL,
		Metadata: meta,
	}, nil
}

// ValidateUpdate checks a partial payload. Only the keys that are present are
// validated, and at least one recognized key is required.
func (v *ProjectValidator) ValidateUpdate(body []byte) (models.ProjectPatch, error) {
	in, err := decodeInput(body)
	if err != nil {
		return models.ProjectPatch{}, err
	}
	if in.Title == nil && in.Category == nil && in.ImageURL == nil && in.Metadata == nil {
		return models.ProjectPatch{}, models.NewValidationError(models.Issue{Message: "At least one field is required"})
	}

	var (
		patch  models.ProjectPatch
		issues []models.Issue
	)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		issues = append(issues, v.check("title", title, titleRules)...)
		patch.Title = &title
	}
	if in.Category != nil {
		category := models.Category(*in.Category)
		issues = append(issues, v.check("category", *in.Category, categoryRules)...)
		patch.Category = &category
	}
	if in.ImageURL != nil {
		imageURL := strings.TrimSpace(*in.ImageURL)
		issues = append(issues, v.check("imageUrl", imageURL, imageURLRules)...)
		patch.ImageURL = &imageURL
	}
	if in.Metadata != nil {
		meta, metaIssues := v.normalizeMetadata(in.Metadata)
		issues = append(issues, metaIssues...)
		patch.Metadata = meta
		patch.MetadataSet = true
	}

	if len(issues) > 0 {
		return models.ProjectPatch{}, models.NewValidationError(issues...)
	}
	return patch, nil
}

// normalizeMetadata trims the four metadata fields. An all-blank object
// becomes nil; a partially filled one yields an issue per missing field.
func (v *ProjectValidator) normalizeMetadata(in *models.MetadataInput) (*models.Metadata, []models.Issue) {
	if in == nil {
		return nil, nil
	}
	m := models.Metadata{
		ISO:      strings.TrimSpace(deref(in.ISO)),
		Aperture: strings.TrimSpace(deref(in.Aperture)),
		Shutter:  strings.TrimSpace(deref(in.Shutter)),
		Date:     strings.TrimSpace(deref(in.Date)),
	}
	fields := []struct {
		path  string
		value string
	}{
		{"metadata.iso", m.ISO},
		{"metadata.aperture", m.Aperture},
		{"metadata.shutter", m.Shutter},
		{"metadata.date", m.Date},
	}

	filled := 0
	for _, f := range fields {
		if f.value != "" {
			filled++
		}
	}
	if filled == 0 {
		return nil, nil
	}

	var issues []models.Issue
	for _, f := range fields {
		if err := v.validate.Var(f.value, metadataRules); err != nil {
			issues = append(issues, models.Issue{
				Path:    f.path,
				Message: "metadata must be either omitted/empty or include iso/aperture/shutter/date",
			})
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return &m, nil
}

func (v *ProjectValidator) check(path, value, rules string) []models.Issue {
	err := v.validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.Issue{{Path: path, Message: err.Error()}}
	}
	issues := make([]models.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, models.Issue{Path: path, Message: message(path, fe)})
	}
	return issues
}

func message(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "category":
		names := make([]string, len(models.Categories))
		for i, c := range models.Categories {
			names[i] = string(c)
		}
		return "must be one of: " + strings.Join(names, ", ")
	case "imageurl":
		return path + " must be an absolute URL or a local path starting with " + uploadsPrefix
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// decodeInput reads the recognized keys by exact name. Keys differing only
// in case are treated as unknown.
func decodeInput(body []byte) (models.ProjectInput, error) {
	var in models.ProjectInput
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return in, models.NewValidationError(models.Issue{Message: "request body must be a JSON object"})
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return in, models.NewValidationError(models.Issue{Message: "malformed JSON body"})
	}

	var issues []models.Issue
	in.Title = stringField(raw, "title", "title", &issues)
	in.Category = stringField(raw, "category", "category", &issues)
	in.ImageURL = stringField(raw, "imageUrl", "imageUrl", &issues)

	if value, ok := raw["metadata"]; ok && !isNull(value) {
		var meta map[string]json.RawMessage
		if err := json.Unmarshal(value, &meta); err != nil {
			issues = append(issues, models.Issue{Path: "metadata", Message: "expected object"})
		} else {
			in.Metadata = &models.MetadataInput{
				ISO:      stringField(meta, "iso", "metadata.iso", &issues),
				Aperture: stringField(meta, "aperture", "metadata.aperture", &issues),
				Shutter:  stringField(meta, "shutter", "metadata.shutter", &issues),
				Date:     stringField(meta, "date", "metadata.date", &issues),
			}
		}
	}

	if len(issues) > 0 {
		return in, models.NewValidationError(issues...)
	}
	return in, nil
}

// stringField returns nil for a missing or null key.
func stringField(raw map[string]json.RawMessage, key, path string, issues *[]models.Issue) *string {
	value, ok := raw[key]
	if !ok || isNull(value) {
		return nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		*issues = append(*issues, models.Issue{Path: path, Message: "expected string"})
		return nil
	}
	return &s
}

func isNull(value json.RawMessage) bool {
	return string(bytes.TrimSpace(value)) == "null"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
