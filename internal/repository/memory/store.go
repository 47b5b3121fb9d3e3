package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"
)

// maxVarchar mirrors the varchar(255) columns of the relational schema.
const maxVarchar = 255

// Store keeps all four tables in-process. It mirrors the relational
// backend's guarantees (unique exercise names, column limits, cascade delete,
// atomic bulk creation) so services can be tested without a database.
type Store struct {
	mu sync.RWMutex

	// id sequences, like serial columns: never rolled back.
	exerciseSeq, workoutSeq, workoutExerciseSeq, setSeq int64

	exercises        map[int64]domain.Exercise
	exerciseByName   map[string]int64
	workouts         map[int64]domain.Workout
	workoutExercises map[int64]domain.WorkoutExercise
	sets             map[int64]domain.Set
}

// NewStore initializes an empty in-memory store.
func NewStore() *Store {
	return &Store{
		exercises:        make(map[int64]domain.Exercise),
		exerciseByName:   make(map[string]int64),
		workouts:         make(map[int64]domain.Workout),
		workoutExercises: make(map[int64]domain.WorkoutExercise),
		sets:             make(map[int64]domain.Set),
	}
}

// Repositories returns the repository views over this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Exercises:        &exerciseRepo{s: s},
		Workouts:         &workoutRepo{s: s},
		WorkoutExercises: &workoutExerciseRepo{s: s},
		Sets:             &setRepo{s: s},
	}
}

// Counts returns the number of rows per table. Handy for cascade assertions.
func (s *Store) Counts() (exercises, workouts, workoutExercises, sets int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exercises), len(s.workouts), len(s.workoutExercises), len(s.sets)
}

type snapshot struct {
	exercises        map[int64]domain.Exercise
	exerciseByName   map[string]int64
	workouts         map[int64]domain.Workout
	workoutExercises map[int64]domain.WorkoutExercise
	sets             map[int64]domain.Set
}

// begin captures the tables so a failed multi-row write can be undone.
// Caller holds the write lock.
func (s *Store) begin() snapshot {
	return snapshot{
		exercises:        cloneMap(s.exercises),
		exerciseByName:   cloneMap(s.exerciseByName),
		workouts:         cloneMap(s.workouts),
		workoutExercises: cloneMap(s.workoutExercises),
		sets:             cloneMap(s.sets),
	}
}

func (s *Store) rollback(snap snapshot) {
	s.exercises = snap.exercises
	s.exerciseByName = snap.exerciseByName
	s.workouts = snap.workouts
	s.workoutExercises = snap.workoutExercises
	s.sets = snap.sets
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func checkVarchar(column, value string) error {
	if utf8.RuneCountInString(value) > maxVarchar {
		return fmt.Errorf("%w: %s exceeds varchar(%d)", repository.ErrConstraint, column, maxVarchar)
	}
	return nil
}

// cloneWorkout copies w without sharing its pointer fields, so neither the
// stored row nor a returned record can be edited through the other.
func cloneWorkout(w domain.Workout) domain.Workout {
	if w.Name != nil {
		name := *w.Name
		w.Name = &name
	}
	if w.CompletedAt != nil {
		completed := *w.CompletedAt
		w.CompletedAt = &completed
	}
	w.Exercises = nil
	return w
}

// ownedWorkout is the join-through-parent check. Caller holds a lock.
// The result is a private copy.
func (s *Store) ownedWorkout(workoutID int64, userID string) (domain.Workout, bool) {
	w, ok := s.workouts[workoutID]
	if !ok || w.UserID != userID {
		return domain.Workout{}, false
	}
	return cloneWorkout(w), true
}

func (s *Store) ownedWorkoutExercise(id int64, userID string) (domain.WorkoutExercise, bool) {
	we, ok := s.workoutExercises[id]
	if !ok {
		return domain.WorkoutExercise{}, false
	}
	if _, ok := s.ownedWorkout(we.WorkoutID, userID); !ok {
		return domain.WorkoutExercise{}, false
	}
	return we, true
}

func (s *Store) ownedSet(id int64, userID string) (domain.Set, bool) {
	set, ok := s.sets[id]
	if !ok {
		return domain.Set{}, false
	}
	if _, ok := s.ownedWorkoutExercise(set.WorkoutExerciseID, userID); !ok {
		return domain.Set{}, false
	}
	return set, true
}

// loadChildren attaches exercises and sets to w in display order.
func (s *Store) loadChildren(w *domain.Workout) {
	w.Exercises = s.childrenOf(w.ID)
	domain.SortWorkoutChildren(w)
}

func (s *Store) childrenOf(workoutID int64) []domain.WorkoutExercise {
	res := make([]domain.WorkoutExercise, 0)
	for _, we := range s.workoutExercises {
		if we.WorkoutID != workoutID {
			continue
		}
		if ex, ok := s.exercises[we.ExerciseID]; ok {
			ex := ex
			we.Exercise = &ex
		}
		we.Sets = s.setsOf(we.ID)
		res = append(res, we)
	}
	return res
}

func (s *Store) setsOf(workoutExerciseID int64) []domain.Set {
	res := make([]domain.Set, 0)
	for _, set := range s.sets {
		if set.WorkoutExerciseID == workoutExerciseID {
			res = append(res, set)
		}
	}
	domain.SortSets(res)
	return res
}

// deleteWorkoutCascade mirrors ON DELETE CASCADE. Caller holds the write lock.
func (s *Store) deleteWorkoutCascade(workoutID int64) {
	for id, we := range s.workoutExercises {
		if we.WorkoutID == workoutID {
			s.deleteWorkoutExerciseCascade(id)
		}
	}
	delete(s.workouts, workoutID)
}

func (s *Store) deleteWorkoutExerciseCascade(id int64) {
	for setID, set := range s.sets {
		if set.WorkoutExerciseID == id {
			delete(s.sets, setID)
		}
	}
	delete(s.workoutExercises, id)
}

// insertExercise adds a new library entry. Caller holds the write lock.
func (s *Store) insertExercise(name string) (domain.Exercise, error) {
	if err := checkVarchar("exercises.name", name); err != nil {
		return domain.Exercise{}, err
	}
	if _, exists := s.exerciseByName[name]; exists {
		return domain.Exercise{}, fmt.Errorf("%w: exercises.name %q already exists", repository.ErrConstraint, name)
	}
	now := domain.Now()
	s.exerciseSeq++
	ex := domain.Exercise{ID: s.exerciseSeq, Name: name, CreatedAt: now, UpdatedAt: now}
	s.exercises[ex.ID] = ex
	s.exerciseByName[name] = ex.ID
	return ex, nil
}

func (s *Store) getOrInsertExercise(name string) (domain.Exercise, error) {
	if id, ok := s.exerciseByName[name]; ok {
		return s.exercises[id], nil
	}
	return s.insertExercise(name)
}

func hasPrefixFold(name, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix))
}

func sortExercisesByName(exs []domain.Exercise) {
	sort.Slice(exs, func(i, j int) bool {
		if exs[i].Name != exs[j].Name {
			return exs[i].Name < exs[j].Name
		}
		return exs[i].ID < exs[j].ID
	})
}
