package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// ScopeKind selects which posts a feed shows.
type ScopeKind string

const (
	ScopeGlobal    ScopeKind = "global"
	ScopeGroup     ScopeKind = "group"
	ScopeAuthor    ScopeKind = "author"
	ScopeFollowing ScopeKind = "following"
)

// Scope is a feed filter. ID is the group id, the author id, or the follower
// id depending on Kind; it is ignored for the global scope.
type Scope struct {
	Kind ScopeKind
	ID   uint
}

func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }
func GroupScope(groupID uint) Scope { return Scope{Kind: ScopeGroup, ID: groupID} }
func AuthorScope(userID uint) Scope { return Scope{Kind: ScopeAuthor, ID: userID} }
func FollowingScope(viewer uint) Scope { return Scope{Kind: ScopeFollowing, ID: viewer} }

func (s Scope) String() string {
	if s.Kind == ScopeGlobal {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// applyScope adds the predicate for s to a query over posts.
func applyScope(db *gorm.DB, s Scope) (*gorm.DB, error) {
	switch s.Kind {
	case ScopeGlobal, "":
		return db, nil
	case ScopeGroup:
		return db.Where("posts.group_id = ?", s.ID), nil
	case ScopeAuthor:
		return db.Where("posts.author_id = ?", s.ID), nil
	case ScopeFollowing:
		return db.Where("posts.author_id IN (SELECT follows.author_id FROM follows WHERE follows.user_id = ?)", s.ID), nil
	default:
		return nil, fmt.Errorf("unknown feed scope %q", s.Kind)
	}
}

// orderPosts applies the feed ordering: newest first, then by author.
// The id tiebreak keeps rows created in the same instant in a stable order.
func orderPosts(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC").
		Order("posts.author_id ASC").
		Order("posts.id DESC")
}
