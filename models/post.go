package models

import "time"

// Post represents a published blog entry. Titles are unique site-wide.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Subtitle  string    `gorm:"size:255" json:"subtitle"`
	Date      string    `gorm:"size:64;not null" json:"date"` // display date, e.g. "August 28, 2026"
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
}
