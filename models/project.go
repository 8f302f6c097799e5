package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a fan-film production shown in the portfolio
type Project struct {
	ID              uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title           string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Status          string                      `json:"status" db:"status" gorm:"type:text;not null"`
	Description     string                      `json:"description" db:"description" gorm:"type:text;not null"`
	FullDescription string                      `json:"fullDescription" db:"full_description" gorm:"type:text"`
	WebsiteURL      string                      `json:"websiteUrl,omitempty" db:"website_url" gorm:"type:text"`
	Color           Color                       `json:"color" db:"color" gorm:"type:text;not null"`
	PosterURL       string                      `json:"posterUrl" db:"poster_url" gorm:"type:text"`
	VideoURL        string                      `json:"videoUrl" db:"video_url" gorm:"type:text"`
	Screenshots     datatypes.JSONSlice[string] `json:"screenshots" db:"screenshots"`
	CreatedAt       time.Time                   `json:"createdAt" db:"created_at" gorm:"autoCreateTime;not null;index"`
	UpdatedAt       time.Time                   `json:"updatedAt" db:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns the identifier. It is never changed afterwards.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// WithDefaults returns a copy with the optional-field fallbacks applied.
func (p Project) WithDefaults() Project {
	if p.FullDescription == "" {
		p.FullDescription = p.Description
	}
	if p.Color == "" {
		p.Color = DefaultColor
	}
	if p.Screenshots == nil {
		p.Screenshots = datatypes.JSONSlice[string]{}
	}
	return p
}

// ProjectInput is the payload of the admin creation form.
type ProjectInput struct {
	Title           string   `json:"title"`
	Status          string   `json:"status"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription,omitempty"`
	WebsiteURL      string   `json:"websiteUrl,omitempty"`
	Color           Color    `json:"color,omitempty"`
	PosterURL       string   `json:"posterUrl"`
	VideoURL        string   `json:"videoUrl"`
	Screenshots     []string `json:"screenshots,omitempty"`
}

// Project builds the record to persist. Identifier and timestamps are left
// to the store.
func (in ProjectInput) Project() *Project {
	color := in.Color
	if color == "" {
		color = DefaultColor
	}
	return &Project{
		Title:           in.Title,
		Status:          in.Status,
		Description:     in.Description,
		FullDescription: in.FullDescription,
		WebsiteURL:      in.WebsiteURL,
		Color:           color,
		PosterURL:       in.PosterURL,
		VideoURL:        in.VideoURL,
		Screenshots:     datatypes.JSONSlice[string](in.Screenshots),
	}
}

// ProjectPatch is a partial update. Nil fields are left untouched. There is
// no way to express a change of ID or CreatedAt.
type ProjectPatch struct {
	Title           *string   `json:"title,omitempty"`
	Status          *string   `json:"status,omitempty"`
	Description     *string   `json:"description,omitempty"`
	FullDescription *string   `json:"fullDescription,omitempty"`
	WebsiteURL      *string   `json:"websiteUrl,omitempty"`
	Color           *Color    `json:"color,omitempty"`
	PosterURL       *string   `json:"posterUrl,omitempty"`
	VideoURL        *string   `json:"videoUrl,omitempty"`
	Screenshots     *[]string `json:"screenshots,omitempty"`
}

// PatchFrom turns a complete form into a patch that overwrites every field.
func PatchFrom(in ProjectInput) ProjectPatch {
	color := in.Color
	screenshots := in.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}
	return ProjectPatch{
		Title:           &in.Title,
		Status:          &in.Status,
		Description:     &in.Description,
		FullDescription: &in.FullDescription,
		WebsiteURL:      &in.WebsiteURL,
		Color:           &color,
		PosterURL:       &in.PosterURL,
		VideoURL:        &in.VideoURL,
		Screenshots:     &screenshots,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Apply returns the project as it will look after the patch.
func (p ProjectPatch) Apply(project Project) Project {
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.FullDescription != nil {
		project.FullDescription = *p.FullDescription
	}
	if p.WebsiteURL != nil {
		project.WebsiteURL = *p.WebsiteURL
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
	if p.PosterURL != nil {
		project.PosterURL = *p.PosterURL
	}
	if p.VideoURL != nil {
		project.VideoURL = *p.VideoURL
	}
	if p.Screenshots != nil {
		project.Screenshots = datatypes.JSONSlice[string](*p.Screenshots)
	}
	return project
}

// Columns maps the patch onto column names for a partial update.
func (p ProjectPatch) Columns() map[string]any {
	columns := make(map[string]any)
	if p.Title != nil {
		columns["title"] = *p.Title
	}
	if p.Status != nil {
		columns["status"] = *p.Status
	}
	if p.Description != nil {
		columns["description"] = *p.Description
	}
	if p.FullDescription != nil {
		columns["full_description"] = *p.FullDescription
	}
	if p.WebsiteURL != nil {
		columns["website_url"] = *p.WebsiteURL
	}
	if p.Color != nil {
		color := *p.Color
		if color == "" {
			color = DefaultColor
		}
		columns["color"] = color
	}
	if p.PosterURL != nil {
		columns["poster_url"] = *p.PosterURL
	}
	if p.VideoURL != nil {
		columns["video_url"] = *p.VideoURL
	}
	if p.Screenshots != nil {
		columns["screenshots"] = datatypes.JSONSlice[string](*p.Screenshots)
	}
	return columns
}
