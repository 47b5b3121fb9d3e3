package postgres

import (
	"context"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// workoutRepository implements repository.WorkoutRepository
type workoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository creates a new Workout repository backed by postgres.
func NewWorkoutRepository(db *gorm.DB) repository.WorkoutRepository {
	return &workoutRepository{db: db}
}

// withChildren eagerly loads exercises by position and their sets by number.
func withChildren(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		Preload("Exercises.Exercise").
		Preload("Exercises.Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("set_number ASC, id ASC")
		})
}

func ownedBy(userID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workouts.user_id = ?", userID)
	}
}

// Create inserts a new workout with created_at == updated_at.
func (r *workoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	return insertWorkout(r.db.WithContext(ctx), w)
}

func insertWorkout(tx *gorm.DB, w *domain.Workout) error {
	now := domain.Now()
	w.ID = 0
	w.StartedAt = domain.Normalize(w.StartedAt)
	if w.CompletedAt != nil {
		completed := domain.Normalize(*w.CompletedAt)
		w.CompletedAt = &completed
	}
	w.CreatedAt = now
	w.UpdatedAt = now

	m := workoutToModel(w)
	if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
		return wrapErr("create workout", err)
	}
	w.ID = m.ID
	return nil
}

// CreateWithExercises writes the workout, its exercises (resolved or created
// by name) and their sets in a single transaction.
func (r *workoutRepository) CreateWithExercises(ctx context.Context, w *domain.Workout, drafts []domain.WorkoutExerciseDraft) error {
	var created domain.Workout
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draft := *w
		if err := insertWorkout(tx, &draft); err != nil {
			return err
		}
		for _, d := range drafts {
			ex, err := getOrCreateExercise(tx, d.ExerciseName)
			if err != nil {
				return err
			}
			we := WorkoutExerciseModel{
				WorkoutID:  draft.ID,
				ExerciseID: ex.ID,
				Order:      d.Order,
				CreatedAt:  draft.CreatedAt,
			}
			if err := tx.Omit(clause.Associations).Create(&we).Error; err != nil {
				return wrapErr("create workout exercise", err)
			}
			if len(d.Sets) == 0 {
				continue
			}
			sets := make([]SetModel, 0, len(d.Sets))
			for _, sd := range d.Sets {
				sets = append(sets, SetModel{
					WorkoutExerciseID: we.ID,
					SetNumber:         sd.SetNumber,
					Weight:            domain.RoundWeight(sd.Weight),
					Reps:              sd.Reps,
					CreatedAt:         draft.CreatedAt,
				})
			}
			if err := tx.Create(&sets).Error; err != nil {
				return wrapErr("create sets", err)
			}
		}
		loaded, found, err := loadWorkout(tx, draft.ID, draft.UserID, true)
		if err != nil {
			return err
		}
		if !found {
			return wrapErr("reload workout", gorm.ErrRecordNotFound)
		}
		created = *loaded
		return nil
	})
	if err != nil {
		return err
	}
	*w = created
	return nil
}

func (r *workoutRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	return loadWorkout(r.db.WithContext(ctx), id, userID, false)
}

func (r *workoutRepository) GetByIDWithExercises(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	return loadWorkout(r.db.WithContext(ctx), id, userID, true)
}

// loadWorkout is the owner-filtered point read every other operation builds on.
// A row owned by someone else is indistinguishable from a missing one.
func loadWorkout(tx *gorm.DB, id int64, userID string, children bool) (*domain.Workout, bool, error) {
	var m WorkoutModel
	q := tx.Scopes(ownedBy(userID)).Where("workouts.id = ?", id)
	if children {
		q = withChildren(q)
	}
	if err := q.First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, wrapErr("get workout", err)
	}
	w := workoutFromModel(m)
	if children {
		ensureChildren(&w)
	}
	return &w, true, nil
}

func ensureChildren(w *domain.Workout) {
	if w.Exercises == nil {
		w.Exercises = []domain.WorkoutExercise{}
	}
	for i := range w.Exercises {
		if w.Exercises[i].Sets == nil {
			w.Exercises[i].Sets = []domain.Set{}
		}
	}
	domain.SortWorkoutChildren(w)
}

// ListByUser returns the user's workouts, most recent first.
func (r *workoutRepository) ListByUser(ctx context.Context, userID string, window *domain.DateRange, withExercises bool) ([]domain.Workout, error) {
	var models []WorkoutModel
	q := r.db.WithContext(ctx).Scopes(ownedBy(userID))
	if window != nil {
		q = q.Where("workouts.started_at >= ? AND workouts.started_at < ?", window.Start, window.End)
	}
	if withExercises {
		q = withChildren(q)
	}
	if err := q.Order("started_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, wrapErr("list workouts", err)
	}
	res := make([]domain.Workout, 0, len(models))
	for _, m := range models {
		w := workoutFromModel(m)
		if withExercises {
			ensureChildren(&w)
		}
		res = append(res, w)
	}
	return res, nil
}

// Update re-reads the row under the owner filter, then writes only the
// supplied columns plus updated_at.
func (r *workoutRepository) Update(ctx context.Context, id int64, userID string, upd domain.WorkoutUpdate) (*domain.Workout, bool, error) {
	var (
		updated *domain.Workout
		found   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, ok, err := loadWorkout(tx, id, userID, false)
		if err != nil || !ok {
			return err
		}
		now := domain.Now()
		upd.Apply(w, now)

		updates := map[string]any{"updated_at": now}
		if upd.Name != nil {
			updates["name"] = w.Name
		}
		if upd.StartedAt != nil {
			updates["started_at"] = w.StartedAt
		}
		if upd.ClearCompletedAt || upd.CompletedAt != nil {
			updates["completed_at"] = w.CompletedAt
		}
		res := tx.Model(&WorkoutModel{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if res.Error != nil {
			return wrapErr("update workout", res.Error)
		}
		if res.RowsAffected == 0 {
			// Deleted between the read and the write.
			return nil
		}
		updated, found = w, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, found, nil
}

// Delete removes the workout if the owner matches. Child rows are removed by
// the ON DELETE CASCADE foreign keys.
func (r *workoutRepository) Delete(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	var m WorkoutModel
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&m)
	if res.Error != nil {
		return nil, false, wrapErr("delete workout", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	w := workoutFromModel(m)
	return &w, true, nil
}
