package models

import (
	"time"
)

// PostSummaryLength is the number of characters Summary keeps.
const PostSummaryLength = 15

// Post is a single publication. Deleting the author removes the post;
// deleting the group only clears GroupID.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image     string    `gorm:"size:255" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Summary returns the leading characters of the post text.
func (p Post) Summary() string {
	r := []rune(p.Text)
	if len(r) <= PostSummaryLength {
		return p.Text
	}
	return string(r[:PostSummaryLength])
}

func (p Post) String() string {
	return p.Summary()
}

// IsAuthoredBy reports whether userID owns the post. Anonymous callers (0)
// never own anything.
func (p Post) IsAuthoredBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}
