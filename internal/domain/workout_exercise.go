package domain

import "time"

// WorkoutExercise places an Exercise at a position inside a Workout.
// Order is caller-assigned and not unique within a workout.
type WorkoutExercise struct {
	ID         int64     `bson:"_id" json:"id"`
	WorkoutID  int64     `bson:"workoutId" json:"workoutId"`
	ExerciseID int64     `bson:"exerciseId" json:"exerciseId"`
	Order      int       `bson:"order" json:"order"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`

	Exercise *Exercise `bson:"-" json:"exercise,omitempty"`
	Sets     []Set     `bson:"-" json:"sets"`
}

// WorkoutExerciseUpdate moves an entry to a new position.
type WorkoutExerciseUpdate struct {
	Order *int
}

// WorkoutExerciseDraft describes one exercise of a workout created in bulk.
// The exercise is resolved (or created) by name inside the same transaction.
type WorkoutExerciseDraft struct {
	ExerciseName string
	Order        int
	Sets         []SetDraft
}
