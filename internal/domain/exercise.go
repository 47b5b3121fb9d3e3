// internal/domain/exercise.go
package domain

import "time"

// Exercise is a named movement in the shared library. It has no owner and is
// created on demand the first time a workout references it by name.
type Exercise struct {
	ID        int64     `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"` // Unique across the library
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
