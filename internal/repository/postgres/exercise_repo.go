package postgres

import (
	"context"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// exerciseRepository implements repository.ExerciseRepository
type exerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository creates a new Exercise repository backed by postgres.
func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &exerciseRepository{db: db}
}

// Create inserts a new exercise. A duplicate name is an ErrConstraint.
func (r *exerciseRepository) Create(ctx context.Context, name string) (*domain.Exercise, error) {
	m := ExerciseModel{Name: name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, wrapErr("create exercise", err)
	}
	ex := exerciseFromModel(m)
	return &ex, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id int64) (*domain.Exercise, bool, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *exerciseRepository) GetByName(ctx context.Context, name string) (*domain.Exercise, bool, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *exerciseRepository) first(ctx context.Context, query string, args ...any) (*domain.Exercise, bool, error) {
	var m ExerciseModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapErr("get exercise", err)
	}
	ex := exerciseFromModel(m)
	return &ex, true, nil
}

// GetOrCreate inserts with ON CONFLICT (name) DO NOTHING and reads the winner,
// so two requests naming the same new exercise both succeed.
func (r *exerciseRepository) GetOrCreate(ctx context.Context, name string) (*domain.Exercise, error) {
	m, err := getOrCreateExercise(r.db.WithContext(ctx), name)
	if err != nil {
		return nil, err
	}
	ex := exerciseFromModel(m)
	return &ex, nil
}

func getOrCreateExercise(tx *gorm.DB, name string) (ExerciseModel, error) {
	m := ExerciseModel{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&m).Error
	if err != nil {
		return ExerciseModel{}, wrapErr("create exercise", err)
	}
	if m.ID != 0 {
		return m, nil
	}
	if err := tx.Where("name = ?", name).First(&m).Error; err != nil {
		return ExerciseModel{}, wrapErr("get exercise", err)
	}
	return m, nil
}

func (r *exerciseRepository) List(ctx context.Context, prefix string, limit int) ([]domain.Exercise, error) {
	var models []ExerciseModel
	tx := r.db.WithContext(ctx).Order("name ASC, id ASC")
	if prefix != "" {
		tx = tx.Where("name ILIKE ?", escapeLike(prefix)+"%")
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, wrapErr("list exercises", err)
	}
	res := make([]domain.Exercise, 0, len(models))
	for _, m := range models {
		res = append(res, exerciseFromModel(m))
	}
	return res, nil
}
