package postgres

import (
	"time"

	"alcyxob/liftlog/internal/domain"
)

// GORM models used for persistence. Column types follow the migrations.

type ExerciseModel struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ExerciseModel) TableName() string { return "exercises" }

type WorkoutModel struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      string     `gorm:"type:varchar(255);not null;index"`
	Name        *string    `gorm:"type:varchar(255)"`
	StartedAt   time.Time  `gorm:"not null;index"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`

	Exercises []WorkoutExerciseModel `gorm:"foreignKey:WorkoutID;constraint:OnDelete:CASCADE"`
}

func (WorkoutModel) TableName() string { return "workouts" }

type WorkoutExerciseModel struct {
	ID         int64     `gorm:"primaryKey"`
	WorkoutID  int64     `gorm:"not null"`
	ExerciseID int64     `gorm:"not null"`
	Order      int       `gorm:"column:order;not null"`
	CreatedAt  time.Time `gorm:"not null"`

	Exercise *ExerciseModel `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE"`
	Sets     []SetModel     `gorm:"foreignKey:WorkoutExerciseID;constraint:OnDelete:CASCADE"`
}

func (WorkoutExerciseModel) TableName() string { return "workout_exercises" }

type SetModel struct {
	ID                int64     `gorm:"primaryKey"`
	WorkoutExerciseID int64     `gorm:"not null"`
	SetNumber         int       `gorm:"not null"`
	Weight            float64   `gorm:"type:numeric(10,2);not null"`
	Reps              int       `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

func (SetModel) TableName() string { return "sets" }

func exerciseFromModel(m ExerciseModel) domain.Exercise {
	return domain.Exercise{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func workoutToModel(w *domain.Workout) WorkoutModel {
	return WorkoutModel{
		ID:          w.ID,
		UserID:      w.UserID,
		Name:        w.Name,
		StartedAt:   w.StartedAt,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func workoutFromModel(m WorkoutModel) domain.Workout {
	w := domain.Workout{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		StartedAt: m.StartedAt.UTC(),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		completed := m.CompletedAt.UTC()
		w.CompletedAt = &completed
	}
	if m.Exercises != nil {
		w.Exercises = make([]domain.WorkoutExercise, 0, len(m.Exercises))
		for _, we := range m.Exercises {
			w.Exercises = append(w.Exercises, workoutExerciseFromModel(we))
		}
	}
	return w
}

func workoutExerciseFromModel(m WorkoutExerciseModel) domain.WorkoutExercise {
	we := domain.WorkoutExercise{
		ID:         m.ID,
		WorkoutID:  m.WorkoutID,
		ExerciseID: m.ExerciseID,
		Order:      m.Order,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.Exercise != nil {
		ex := exerciseFromModel(*m.Exercise)
		we.Exercise = &ex
	}
	if m.Sets != nil {
		we.Sets = make([]domain.Set, 0, len(m.Sets))
		for _, s := range m.Sets {
			we.Sets = append(we.Sets, setFromModel(s))
		}
	}
	return we
}

func setFromModel(m SetModel) domain.Set {
	return domain.Set{
		ID:                m.ID,
		WorkoutExerciseID: m.WorkoutExerciseID,
		SetNumber:         m.SetNumber,
		Weight:            m.Weight,
		Reps:              m.Reps,
		CreatedAt:         m.CreatedAt.UTC(),
	}
}
