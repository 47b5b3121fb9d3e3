package postgres

import (
	"context"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"gorm.io/gorm"
)

// setRepository implements repository.SetRepository. Ownership is resolved
// through sets -> workout_exercises -> workouts on every query.
type setRepository struct {
	db *gorm.DB
}

func NewSetRepository(db *gorm.DB) repository.SetRepository {
	return &setRepository{db: db}
}

func ownedSets(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN workout_exercises ON workout_exercises.id = sets.workout_exercise_id").
			Joins("JOIN workouts ON workouts.id = workout_exercises.workout_id").
			Where("workouts.user_id = ?", userID)
	}
}

func workoutExerciseOwned(tx *gorm.DB, workoutExerciseID int64, userID string) (bool, error) {
	var count int64
	err := tx.Model(&WorkoutExerciseModel{}).
		Scopes(ownedWorkoutExercises(userID)).
		Where("workout_exercises.id = ?", workoutExerciseID).
		Count(&count).Error
	if err != nil {
		return false, wrapErr("check workout exercise owner", err)
	}
	return count > 0, nil
}

func loadSet(tx *gorm.DB, id int64, userID string) (*domain.Set, bool, error) {
	var m SetModel
	err := tx.Scopes(ownedSets(userID)).Where("sets.id = ?", id).First(&m).Error
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapErr("get set", err)
	}
	s := setFromModel(m)
	return &s, true, nil
}

func (r *setRepository) Create(ctx context.Context, userID string, workoutExerciseID int64, setNumber int, weight float64, reps int) (*domain.Set, bool, error) {
	var (
		created domain.Set
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := workoutExerciseOwned(tx, workoutExerciseID, userID)
		if err != nil || !ok {
			return err
		}
		m := SetModel{
			WorkoutExerciseID: workoutExerciseID,
			SetNumber:         setNumber,
			Weight:            domain.RoundWeight(weight),
			Reps:              reps,
			CreatedAt:         domain.Now(),
		}
		if err := tx.Create(&m).Error; err != nil {
			return wrapErr("create set", err)
		}
		created, found = setFromModel(m), true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &created, true, nil
}

func (r *setRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.Set, bool, error) {
	return loadSet(r.db.WithContext(ctx), id, userID)
}

func (r *setRepository) ListByWorkoutExercise(ctx context.Context, workoutExerciseID int64, userID string) ([]domain.Set, bool, error) {
	tx := r.db.WithContext(ctx)
	ok, err := workoutExerciseOwned(tx, workoutExerciseID, userID)
	if err != nil || !ok {
		return nil, false, err
	}
	var models []SetModel
	err = tx.Where("workout_exercise_id = ?", workoutExerciseID).
		Order("set_number ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, false, wrapErr("list sets", err)
	}
	res := make([]domain.Set, 0, len(models))
	for _, m := range models {
		res = append(res, setFromModel(m))
	}
	return res, true, nil
}

func (r *setRepository) NextSetNumber(ctx context.Context, workoutExerciseID int64, userID string) (int, bool, error) {
	tx := r.db.WithContext(ctx)
	ok, err := workoutExerciseOwned(tx, workoutExerciseID, userID)
	if err != nil || !ok {
		return 0, false, err
	}
	var next int
	err = tx.Model(&SetModel{}).
		Select("COALESCE(MAX(set_number) + 1, 1)").
		Where("workout_exercise_id = ?", workoutExerciseID).
		Scan(&next).Error
	if err != nil {
		return 0, false, wrapErr("next set number", err)
	}
	return next, true, nil
}

func (r *setRepository) Update(ctx context.Context, id int64, userID string, upd domain.SetUpdate) (*domain.Set, bool, error) {
	var (
		updated *domain.Set
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, ok, err := loadSet(tx, id, userID)
		if err != nil || !ok {
			return err
		}
		upd.Apply(s)
		updates := map[string]any{}
		if upd.SetNumber != nil {
			updates["set_number"] = s.SetNumber
		}
		if upd.Weight != nil {
			updates["weight"] = s.Weight
		}
		if upd.Reps != nil {
			updates["reps"] = s.Reps
		}
		if len(updates) > 0 {
			res := tx.Model(&SetModel{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return wrapErr("update set", res.Error)
			}
			if res.RowsAffected == 0 {
				return nil
			}
		}
		updated, found = s, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, found, nil
}

func (r *setRepository) Delete(ctx context.Context, id int64, userID string) (*domain.Set, bool, error) {
	var (
		deleted *domain.Set
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, ok, err := loadSet(tx, id, userID)
		if err != nil || !ok {
			return err
		}
		res := tx.Delete(&SetModel{}, id)
		if res.Error != nil {
			return wrapErr("delete set", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted, found = s, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return deleted, found, nil
}
