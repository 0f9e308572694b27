package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Text is one trait snippet shown on either side of a comparison.
type Text struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text      string    `gorm:"uniqueIndex;not null;column:text" json:"text"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Text) TableName() string {
	return "texts"
}

func (t *Text) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
