package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/validation"
)

func issuesOf(t *testing.T, err error) []models.Issue {
	t.Helper()
	var vErr *models.ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
	return vErr.Issues
}

func pathsOf(issues []models.Issue) []string {
	paths := make([]string, len(issues))
	for i, is := range issues {
		paths[i] = is.Path
	}
	return paths
}

func TestValidateCreate_TrimsAndAccepts(t *testing.T) {
	v := validation.NewProjectValidator()

	draft, err := v.ValidateCreate([]byte(`{
		"title": "  Dusk on the Bund  ",
		"category": "Dance/Theater",
		"imageUrl": " https://images.example.com/dusk.jpg ",
		"metadata": {"iso": " 200 ", "aperture": "f/2.8", "shutter": "1/500", "date": "2024-06-01"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Dusk on the Bund", draft.Title)
	assert.Equal(t, models.CategoryDanceTheater, draft.Category)
	assert.Equal(t, "https://images.example.com/dusk.jpg", draft.ImageURL)
	require.NotNil(t, draft.Metadata)
	assert.Equal(t, "200", draft.Metadata.ISO)
}

func TestValidateCreate_TitleBounds(t *testing.T) {
	v := validation.NewProjectValidator()

	_, err := v.ValidateCreate([]byte(`{"title":"` + strings.Repeat("a", validation.MaxTitleLength) + `","category":"Wedding","imageUrl":"/uploads/x.jpg"}`))
	assert.NoError(t, err)

	_, err = v.ValidateCreate([]byte(`{"title":"` + strings.Repeat("a", validation.MaxTitleLength+1) + `","category":"Wedding","imageUrl":"/uploads/x.jpg"}`))
	issues := issuesOf(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "title", issues[0].Path)
	assert.Equal(t, "must be at most 120 characters", issues[0].Message)

	_, err = v.ValidateCreate([]byte(`{"title":"   ","category":"Wedding","imageUrl":"/uploads/x.jpg"}`))
	issues = issuesOf(t, err)
	assert.Equal(t, []string{"title"}, pathsOf(issues))
	assert.Equal(t, "is required", issues[0].Message)
}

func TestValidateCreate_CategoryIsExact(t *testing.T) {
	v := validation.NewProjectValidator()

	for _, bad := range []string{"wedding", "Wedding ", "Portrait", ""} {
		_, err := v.ValidateCreate([]byte(`{"title":"t","category":"` + bad + `","imageUrl":"/uploads/x.jpg"}`))
		assert.Equal(t, []string{"category"}, pathsOf(issuesOf(t, err)), "category %q", bad)
	}
}

func TestIsImageURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"/uploads/a.jpg", true},
		{"https://cdn.example.com/a.jpg", true},
		{"http://localhost:8787/uploads/a.jpg", true},
		{"data:image/png;base64,AAAA", true},
		{"/images/a.jpg", false},
		{"uploads/a.jpg", false},
		{"cdn.example.com/a.jpg", false},
		{"", false},
		{"https://", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validation.IsImageURL(tt.in), tt.in)
	}
}

func TestValidateCreate_Metadata(t *testing.T) {
	v := validation.NewProjectValidator()
	base := `{"title":"t","category":"Styling","imageUrl":"/uploads/x.jpg","metadata":`

	draft, err := v.ValidateCreate([]byte(base + `{"iso":" ","aperture":"","shutter":"","date":""}}`))
	require.NoError(t, err)
	assert.Nil(t, draft.Metadata)

	draft, err = v.ValidateCreate([]byte(base + `{}}`))
	require.NoError(t, err)
	assert.Nil(t, draft.Metadata)

	_, err = v.ValidateCreate([]byte(base + `{"iso":"100","aperture":"f/2"}}`))
	assert.Equal(t, []string{"metadata.shutter", "metadata.date"}, pathsOf(issuesOf(t, err)))
}

func TestValidateCreate_ReportsEveryField(t *testing.T) {
	v := validation.NewProjectValidator()

	_, err := v.ValidateCreate([]byte(`{}`))
	assert.Equal(t, []string{"title", "category", "imageUrl"}, pathsOf(issuesOf(t, err)))
}

func TestValidateCreate_MalformedBodies(t *testing.T) {
	v := validation.NewProjectValidator()

	_, err := v.ValidateCreate([]byte(`[1,2]`))
	assert.Equal(t, "request body must be a JSON object", issuesOf(t, err)[0].Message)

	_, err = v.ValidateCreate([]byte(`{"title":`))
	assert.Equal(t, "malformed JSON body", issuesOf(t, err)[0].Message)

	_, err = v.ValidateCreate([]byte(`{"title":42}`))
	issues := issuesOf(t, err)
	assert.Equal(t, "title", issues[0].Path)
	assert.Equal(t, "expected string", issues[0].Message)

	_, err = v.ValidateCreate([]byte(`{"TITLE":"A","CATEGORY":"Fashion","ImageUrl":"https://x/y.jpg"}`))
	assert.Equal(t, []string{"title", "category", "imageUrl"}, pathsOf(issuesOf(t, err)))

	_, err = v.ValidateCreate([]byte(`{"title":"A","category":"Fashion","imageUrl":"https://x/y.jpg","metadata":{"ISO":"100","aperture":"f/2","shutter":"1/60","date":"2024"}}`))
	assert.Equal(t, []string{"metadata.iso"}, pathsOf(issuesOf(t, err)))

	_, err = v.ValidateCreate([]byte(`{"title":"A","category":"Fashion","imageUrl":"https://x/y.jpg","metadata":"x"}`))
	assert.Equal(t, []string{"metadata"}, pathsOf(issuesOf(t, err)))
}

func TestValidateUpdate(t *testing.T) {
	v := validation.NewProjectValidator()

	_, err := v.ValidateUpdate([]byte(`{"unknown":"x"}`))
	assert.Equal(t, "At least one field is required", issuesOf(t, err)[0].Message)

	_, err = v.ValidateUpdate([]byte(`{"Title":"renamed"}`))
	assert.Equal(t, "At least one field is required", issuesOf(t, err)[0].Message)

	patch, err := v.ValidateUpdate([]byte(`{"title":" New "}`))
	require.NoError(t, err)
	require.NotNil(t, patch.Title)
	assert.Equal(t, "New", *patch.Title)
	assert.Nil(t, patch.Category)
	assert.False(t, patch.MetadataSet)

	_, err = v.ValidateUpdate([]byte(`{"imageUrl":"relative.jpg"}`))
	assert.Equal(t, []string{"imageUrl"}, pathsOf(issuesOf(t, err)))

	patch, err = v.ValidateUpdate([]byte(`{"metadata":{"iso":"","aperture":"","shutter":"","date":""}}`))
	require.NoError(t, err)
	assert.True(t, patch.MetadataSet)
	assert.Nil(t, patch.Metadata)
}

func TestProjectPatch_Apply(t *testing.T) {
	v := validation.NewProjectValidator()
	original := models.Project{
		ID: "p1", Title: "Old", Category: models.CategoryFashion, ImageURL: "/uploads/o.jpg",
		Metadata: &models.Metadata{ISO: "100", Aperture: "f/2", Shutter: "1/60", Date: "2020-01-01"},
	}

	patch, err := v.ValidateUpdate([]byte(`{"category":"Wedding"}`))
	require.NoError(t, err)
	next := patch.Apply(original)
	assert.Equal(t, models.CategoryWedding, next.Category)
	assert.Equal(t, "Old", next.Title)
	assert.Equal(t, original.Metadata, next.Metadata)
	assert.NotSame(t, original.Metadata, next.Metadata)
}
