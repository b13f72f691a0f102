package specification

import "gorm.io/gorm"

// FavoriteOnly keeps only notes the owner has starred.
type FavoriteOnly struct{}

func (s FavoriteOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("favorite = ?", true)
}

// NewestFirst is the documented default ordering for note listings:
// created_at descending, matching what the dashboard renders.
func NewestFirst() Specification {
	return OrderBy{Field: "created_at", Desc: true}
}
