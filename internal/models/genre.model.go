package models

import (
	"cinestream/internal/utils"
	"strings"

	"gorm.io/gorm"
)

type Genre struct {
	BaseModel
	Name  string  `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Slug  string  `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Color *string `gorm:"type:text"                      json:"color,omitempty"`

	MediaCount int64 `gorm:"->;-:migration" json:"mediaCount,omitempty"`
}

func (g *Genre) BeforeSave(tx *gorm.DB) error {
	g.Name, _ = utils.CleanUTF8(strings.TrimSpace(g.Name))
	g.Slug = utils.Slugify(g.Name)
	return nil
}
