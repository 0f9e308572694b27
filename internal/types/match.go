package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match pairs two texts for similarity rating. Result stays nil until a rater
// submits a value in [0, 10]. CheckoutAt/CheckoutSessionID record which session
// is currently presenting the match; they discourage, but do not prevent,
// duplicate presentation across sessions.
type Match struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Text1ID           uuid.UUID  `gorm:"type:uuid;not null;column:text_1" json:"text_1"`
	Text2ID           uuid.UUID  `gorm:"type:uuid;not null;column:text_2" json:"text_2"`
	Text1             *Text      `gorm:"foreignKey:Text1ID" json:"text1,omitempty"`
	Text2             *Text      `gorm:"foreignKey:Text2ID" json:"text2,omitempty"`
	Result            *float64   `gorm:"column:result" json:"result"`
	CheckoutAt        *time.Time `gorm:"column:checkout_at" json:"checkout_at"`
	CheckoutSessionID *string    `gorm:"column:checkout_session_id;index" json:"checkout_session_id"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}

func (Match) TableName() string {
	return "matches"
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Rated reports whether a result has been recorded.
func (m *Match) Rated() bool {
	return m != nil && m.Result != nil
}
