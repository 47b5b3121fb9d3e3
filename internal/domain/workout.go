// internal/domain/workout.go
package domain

import (
	"sort"
	"time"
)

// WorkoutStatus is derived from CompletedAt; it is never stored.
type WorkoutStatus string

const (
	StatusInProgress WorkoutStatus = "in_progress"
	StatusCompleted  WorkoutStatus = "completed"
)

// Workout is one training session. UserID is the only ownership boundary in
// the model: exercises and sets inside a workout are owned through it.
type Workout struct {
	ID          int64      `bson:"_id" json:"id"`
	UserID      string     `bson:"userId" json:"userId"`
	Name        *string    `bson:"name,omitempty" json:"name"`
	StartedAt   time.Time  `bson:"startedAt" json:"startedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt"` // nil while in progress
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`

	// Populated only by the *WithExercises reads: null when not loaded,
	// [] for a loaded workout without exercises.
	Exercises []WorkoutExercise `bson:"-" json:"exercises"`
}

// Status reports the lifecycle state of the workout.
func (w *Workout) Status() WorkoutStatus {
	if w.CompletedAt == nil {
		return StatusInProgress
	}
	return StatusCompleted
}

// WorkoutUpdate is a partial update. Nil fields are left untouched.
// A non-nil empty Name clears the name; ClearCompletedAt moves a completed
// workout back to in progress and wins over CompletedAt.
type WorkoutUpdate struct {
	Name             *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// IsEmpty reports whether the update would change no column besides updated_at.
func (u WorkoutUpdate) IsEmpty() bool {
	return u.Name == nil && u.StartedAt == nil && u.CompletedAt == nil && !u.ClearCompletedAt
}

// Apply writes the supplied fields onto w and stamps UpdatedAt.
func (u WorkoutUpdate) Apply(w *Workout, now time.Time) {
	if u.Name != nil {
		if *u.Name == "" {
			w.Name = nil
		} else {
			name := *u.Name
			w.Name = &name
		}
	}
	if u.StartedAt != nil {
		w.StartedAt = Normalize(*u.StartedAt)
	}
	if u.ClearCompletedAt {
		w.CompletedAt = nil
	} else if u.CompletedAt != nil {
		completed := Normalize(*u.CompletedAt)
		w.CompletedAt = &completed
	}
	w.UpdatedAt = now
}

// DefaultWorkoutName is the label given to a workout started without a name.
func DefaultWorkoutName(startedAt time.Time) string {
	return "Workout " + startedAt.UTC().Format("Jan 2, 2006")
}

// SortWorkoutChildren enforces the display contract for eagerly loaded
// children: exercises by order, sets by set number. Ties fall back to id so
// duplicate positions still render deterministically.
func SortWorkoutChildren(w *Workout) {
	sort.SliceStable(w.Exercises, func(i, j int) bool {
		a, b := w.Exercises[i], w.Exercises[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	for i := range w.Exercises {
		SortSets(w.Exercises[i].Sets)
	}
}

// SortWorkoutsByStart orders workouts most recent first.
func SortWorkoutsByStart(ws []Workout) {
	sort.SliceStable(ws, func(i, j int) bool {
		if !ws[i].StartedAt.Equal(ws[j].StartedAt) {
			return ws[i].StartedAt.After(ws[j].StartedAt)
		}
		return ws[i].ID > ws[j].ID
	})
}
