package database

import (
	"encoding/json"
	"fmt"

	"github.com/harry7799/heng-studio/internal/models"
)

const (
	selectProjectsSQL = `
		SELECT id, title, category, image_url, metadata
		FROM projects
		ORDER BY position ASC
	`

	selectProjectSQL = `
		SELECT id, title, category, image_url, metadata
		FROM projects
		WHERE id = $1
	`

	deleteAllProjectsSQL = `DELETE FROM projects`

	insertProjectSQL = `
		INSERT INTO projects (id, position, title, category, image_url, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	insertBackupSQL = `
		INSERT INTO project_backups (document)
		SELECT COALESCE(
			json_agg(json_build_object(
				'id', id, 'title', title, 'category', category,
				'imageUrl', image_url, 'metadata', metadata
			) ORDER BY position),
			'[]'::json
		)
		FROM projects
	`

	pruneBackupsSQL = `
		DELETE FROM project_backups
		WHERE id NOT IN (
			SELECT id FROM project_backups ORDER BY taken_at DESC, id DESC LIMIT $1
		)
	`
)

type projectRow struct {
	ID       string
	Title    string
	Category string
	ImageURL string
	Metadata []byte
}

func (r projectRow) toModel() (models.Project, error) {
	p := models.Project{
		ID:       r.ID,
		Title:    r.Title,
		Category: models.Category(r.Category),
		ImageURL: r.ImageURL,
	}
	if len(r.Metadata) > 0 && string(r.Metadata) != "null" {
		var m models.Metadata
		if err := json.Unmarshal(r.Metadata, &m); err != nil {
			return models.Project{}, fmt.Errorf("failed to decode metadata for project %s: %w", r.ID, err)
		}
		p.Metadata = &m
	}
	return p, nil
}

func metadataParam(m *models.Metadata) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}
