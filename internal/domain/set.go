package domain

import (
	"math"
	"sort"
	"time"
)

// Set is one performed set of a WorkoutExercise.
type Set struct {
	ID                int64     `bson:"_id" json:"id"`
	WorkoutExerciseID int64     `bson:"workoutExerciseId" json:"workoutExerciseId"`
	SetNumber         int       `bson:"setNumber" json:"setNumber"`
	Weight            float64   `bson:"weight" json:"weight"` // numeric(10,2)
	Reps              int       `bson:"reps" json:"reps"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}

// SetUpdate is a partial update of a set. Nil fields are left untouched.
type SetUpdate struct {
	SetNumber *int
	Weight    *float64
	Reps      *int
}

// Apply writes the supplied fields onto s.
func (u SetUpdate) Apply(s *Set) {
	if u.SetNumber != nil {
		s.SetNumber = *u.SetNumber
	}
	if u.Weight != nil {
		s.Weight = RoundWeight(*u.Weight)
	}
	if u.Reps != nil {
		s.Reps = *u.Reps
	}
}

// SetDraft is a set created together with its workout.
type SetDraft struct {
	SetNumber int
	Weight    float64
	Reps      int
}

// MaxWeight is the largest value numeric(10,2) holds.
const MaxWeight = 99999999.99

// RoundWeight rounds to the two decimal places the weight column keeps.
func RoundWeight(w float64) float64 {
	return math.Round(w*100) / 100
}

// SortSets orders sets by set number, then id.
func SortSets(sets []Set) {
	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].SetNumber != sets[j].SetNumber {
			return sets[i].SetNumber < sets[j].SetNumber
		}
		return sets[i].ID < sets[j].ID
	})
}
