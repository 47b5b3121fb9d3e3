package api

import (
	"net/http"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// Services are the actions the router exposes.
type Services struct {
	Workouts  service.WorkoutService
	Exercises service.ExerciseService
	Sets      service.SetService
	Exports   service.ExportService
}

// SetupRoutes installs the middleware chain and the /api/v1 routes.
// verifier may be nil, in which case every request is anonymous.
func SetupRoutes(router *gin.Engine, verifier TokenVerifier, svc Services) {
	workoutHandler := NewWorkoutHandler(svc.Workouts, svc.Exercises)
	exerciseHandler := NewExerciseHandler(svc.Exercises)
	setHandler := NewSetHandler(svc.Sets)
	exportHandler := NewExportHandler(svc.Exports)

	router.Use(RequestID(), RequestLogger())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(AuthMiddleware(verifier))
	{
		workouts := apiV1.Group("/workouts")
		{
			workouts.GET("", workoutHandler.ListWorkouts)
			workouts.POST("", workoutHandler.CreateWorkout)
			workouts.POST("/template", workoutHandler.CreateWorkoutFromTemplate)
			workouts.GET("/:id", workoutHandler.GetWorkout)
			workouts.PATCH("/:id", workoutHandler.UpdateWorkout)
			workouts.DELETE("/:id", workoutHandler.DeleteWorkout)
			workouts.POST("/:id/complete", workoutHandler.CompleteWorkout)
			workouts.POST("/:id/reopen", workoutHandler.ReopenWorkout)
			workouts.POST("/:id/exercises", workoutHandler.AddExercise)
		}

		workoutExercises := apiV1.Group("/workout-exercises")
		{
			workoutExercises.PATCH("/:id", exerciseHandler.ReorderWorkoutExercise)
			workoutExercises.DELETE("/:id", exerciseHandler.RemoveExerciseFromWorkout)
			workoutExercises.POST("/:id/sets", setHandler.AddSet)
		}

		sets := apiV1.Group("/sets")
		{
			sets.PATCH("/:id", setHandler.UpdateSet)
			sets.DELETE("/:id", setHandler.DeleteSet)
		}

		apiV1.GET("/exercises", exerciseHandler.SearchExercises)
		apiV1.POST("/exports", exportHandler.ExportWorkouts)
	}
}
