package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Ratings are serialized as JSON numbers (8.5) rather than strings ("8.5").
	decimal.MarshalJSONWithoutQuotes = true
}

type BaseModel struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
