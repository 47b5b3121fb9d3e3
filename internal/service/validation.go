package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(validateUpdateWorkout, UpdateWorkoutInput{})
	return v
}

// validateUpdateWorkout rejects a completion time before a start time
// supplied in the same update. The stored start is checked by the action.
func validateUpdateWorkout(sl validator.StructLevel) {
	in := sl.Current().Interface().(UpdateWorkoutInput)
	if in.StartedAt != nil && in.CompletedAt != nil && in.CompletedAt.Before(*in.StartedAt) {
		sl.ReportError(in.CompletedAt, "completedAt", "CompletedAt", "afterstart", "")
	}
}

// check runs the struct tags and converts failures to field errors.
func (b *base) check(in any) *Failure {
	err := b.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid(FieldError{Field: "input", Message: err.Error()})
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return invalid(fields...)
}

// fieldPath drops the struct name: "AddSetInput.weight" -> "weight".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return boundMessage(fe, "at least")
	case "max":
		return boundMessage(fe, "at most")
	case "afterstart":
		return "must not be before startedAt"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func boundMessage(fe validator.FieldError, bound string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s items", bound, fe.Param())
	default:
		return fmt.Sprintf("must be %s %s", bound, fe.Param())
	}
}

// validID is the check shared by every action addressed by a row id.
func validID(field string, id int64) *Failure {
	if id <= 0 {
		return invalid(FieldError{Field: field, Message: "must be greater than 0"})
	}
	return nil
}

// checkWindow reports a completion time before the start time.
func checkWindow(startedAt time.Time, completedAt *time.Time) *Failure {
	if completedAt != nil && completedAt.Before(startedAt) {
		return invalid(FieldError{Field: "completedAt", Message: "must not be before startedAt"})
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// workoutName returns the stored name for a new workout: the trimmed input,
// or the generated label when blank.
func workoutName(name *string, startedAt time.Time) *string {
	if name != nil && *name != "" {
		return name
	}
	label := domain.DefaultWorkoutName(startedAt)
	return &label
}
