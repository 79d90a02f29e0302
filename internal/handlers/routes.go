package handlers

import (
	"log"

	"github.com/arzan03/DevCamper/internal/middleware"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type Handlers struct {
	Auth      *AuthHandler
	Bootcamps *BootcampHandler
	Courses   *CourseHandler
	Reviews   *ReviewHandler
	Users     *UserHandler
}

// NewApp builds the Fiber app with the error normalizer and the common
// middleware stack. Access logs are written only when requestLog is set.
func NewApp(errLog *log.Logger, requestLog bool, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DevCamper API",
		ErrorHandler: middleware.ErrorHandler(errLog),
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if requestLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} [${locals:requestid}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New())
	return app
}

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(app *fiber.App, h Handlers, authenticator middleware.Authenticator) {
	protect := middleware.Protect(authenticator)
	publishers := middleware.Authorize(models.RolePublisher, models.RoleAdmin)
	reviewers := middleware.Authorize(models.RoleUser, models.RoleAdmin)

	api := app.Group("/api/v1")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/logout", h.Auth.Logout)
	auth.Get("/me", protect, h.Auth.Me)
	auth.Post("/forgotpassword", h.Auth.ForgotPassword)
	auth.Put("/resetpassword/:resettoken", h.Auth.ResetPassword)
	auth.Put("/updatedetails", protect, h.Auth.UpdateDetails)
	auth.Put("/updatepassword", protect, h.Auth.UpdatePassword)

	// Bootcamp Routes
	bootcamps := api.Group("/bootcamps")
	bootcamps.Get("/radius/:zipcode/:distance", h.Bootcamps.GetBootcampsInRadius)
	bootcamps.Get("/", h.Bootcamps.GetBootcamps)
	bootcamps.Post("/", protect, publishers, h.Bootcamps.CreateBootcamp)
	bootcamps.Get("/:id", h.Bootcamps.GetBootcamp)
	bootcamps.Put("/:id", protect, publishers, h.Bootcamps.UpdateBootcamp)
	bootcamps.Delete("/:id", protect, publishers, h.Bootcamps.DeleteBootcamp)
	bootcamps.Put("/:id/photo", protect, publishers, h.Bootcamps.UploadPhoto)

	// Nested under a bootcamp
	bootcamps.Get("/:bootcampId/courses", h.Courses.GetCourses)
	bootcamps.Post("/:bootcampId/courses", protect, publishers, h.Courses.AddCourse)
	bootcamps.Get("/:bootcampId/reviews", h.Reviews.GetReviews)
	bootcamps.Post("/:bootcampId/reviews", protect, reviewers, h.Reviews.AddReview)

	// Course Routes
	courses := api.Group("/courses")
	courses.Get("/", h.Courses.GetCourses)
	courses.Get("/:id", h.Courses.GetCourse)
	courses.Put("/:id", protect, publishers, h.Courses.UpdateCourse)
	courses.Delete("/:id", protect, publishers, h.Courses.DeleteCourse)

	// Review Routes
	reviews := api.Group("/reviews")
	reviews.Get("/", h.Reviews.GetReviews)
	reviews.Get("/:id", h.Reviews.GetReview)
	reviews.Put("/:id", protect, reviewers, h.Reviews.UpdateReview)
	reviews.Delete("/:id", protect, reviewers, h.Reviews.DeleteReview)

	// Admin Routes
	users := api.Group("/users", protect, middleware.Authorize(models.RoleAdmin))
	users.Get("/", h.Users.ListUsers)
	users.Post("/", h.Users.CreateUser)
	users.Get("/:id", h.Users.GetUserByID)
	users.Put("/:id", h.Users.UpdateUser)
	users.Delete("/:id", h.Users.DeleteUser)
}
