package postgres

import (
	"context"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// workoutExerciseRepository implements repository.WorkoutExerciseRepository.
// workout_exercises has no owner column, so every query joins workouts.
type workoutExerciseRepository struct {
	db *gorm.DB
}

func NewWorkoutExerciseRepository(db *gorm.DB) repository.WorkoutExerciseRepository {
	return &workoutExerciseRepository{db: db}
}

func ownedWorkoutExercises(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN workouts ON workouts.id = workout_exercises.workout_id").
			Where("workouts.user_id = ?", userID)
	}
}

// workoutOwned reports whether workoutID exists and belongs to userID.
func workoutOwned(tx *gorm.DB, workoutID int64, userID string) (bool, error) {
	var count int64
	err := tx.Model(&WorkoutModel{}).
		Where("id = ? AND user_id = ?", workoutID, userID).
		Count(&count).Error
	if err != nil {
		return false, wrapErr("check workout owner", err)
	}
	return count > 0, nil
}

func (r *workoutExerciseRepository) Create(ctx context.Context, userID string, workoutID, exerciseID int64, order int) (*domain.WorkoutExercise, bool, error) {
	var (
		created domain.WorkoutExercise
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := workoutOwned(tx, workoutID, userID)
		if err != nil || !ok {
			return err
		}
		m := WorkoutExerciseModel{
			WorkoutID:  workoutID,
			ExerciseID: exerciseID,
			Order:      order,
			CreatedAt:  domain.Now(),
		}
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return wrapErr("create workout exercise", err)
		}
		var ex ExerciseModel
		if err := tx.First(&ex, exerciseID).Error; err != nil {
			return wrapErr("get exercise", err)
		}
		m.Exercise = &ex
		m.Sets = []SetModel{}
		created, found = workoutExerciseFromModel(m), true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &created, true, nil
}

func (r *workoutExerciseRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	return loadWorkoutExercise(r.db.WithContext(ctx), id, userID, true)
}

func loadWorkoutExercise(tx *gorm.DB, id int64, userID string, children bool) (*domain.WorkoutExercise, bool, error) {
	var m WorkoutExerciseModel
	q := tx.Scopes(ownedWorkoutExercises(userID)).Where("workout_exercises.id = ?", id)
	if children {
		q = q.Preload("Exercise").Preload("Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("set_number ASC, id ASC")
		})
	}
	if err := q.First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapErr("get workout exercise", err)
	}
	we := workoutExerciseFromModel(m)
	if children && we.Sets == nil {
		we.Sets = []domain.Set{}
	}
	return &we, true, nil
}

func (r *workoutExerciseRepository) ListByWorkout(ctx context.Context, workoutID int64, userID string) ([]domain.WorkoutExercise, bool, error) {
	w, found, err := loadWorkout(r.db.WithContext(ctx), workoutID, userID, true)
	if err != nil || !found {
		return nil, false, err
	}
	return w.Exercises, true, nil
}

func (r *workoutExerciseRepository) NextOrder(ctx context.Context, workoutID int64, userID string) (int, bool, error) {
	tx := r.db.WithContext(ctx)
	ok, err := workoutOwned(tx, workoutID, userID)
	if err != nil || !ok {
		return 0, false, err
	}
	var next int
	err = tx.Model(&WorkoutExerciseModel{}).
		Select(`COALESCE(MAX("order") + 1, 0)`).
		Where("workout_id = ?", workoutID).
		Scan(&next).Error
	if err != nil {
		return 0, false, wrapErr("next order", err)
	}
	return next, true, nil
}

func (r *workoutExerciseRepository) Update(ctx context.Context, id int64, userID string, upd domain.WorkoutExerciseUpdate) (*domain.WorkoutExercise, bool, error) {
	var (
		updated *domain.WorkoutExercise
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		we, ok, err := loadWorkoutExercise(tx, id, userID, true)
		if err != nil || !ok {
			return err
		}
		if upd.Order != nil {
			res := tx.Model(&WorkoutExerciseModel{}).
				Where("id = ?", id).
				Updates(map[string]any{"order": *upd.Order})
			if res.Error != nil {
				return wrapErr("update workout exercise", res.Error)
			}
			if res.RowsAffected == 0 {
				return nil
			}
			we.Order = *upd.Order
		}
		updated, found = we, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, found, nil
}

// Delete removes the entry after the ownership join; its sets cascade.
func (r *workoutExerciseRepository) Delete(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	var (
		deleted *domain.WorkoutExercise
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		we, ok, err := loadWorkoutExercise(tx, id, userID, false)
		if err != nil || !ok {
			return err
		}
		res := tx.Delete(&WorkoutExerciseModel{}, id)
		if res.Error != nil {
			return wrapErr("delete workout exercise", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted, found = we, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return deleted, found, nil
}
