// Package repository is the persistence boundary. Each resource has an
// interface, a MongoDB implementation and an in-memory implementation.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Collection names.
const (
	Bootcamps = "bootcamps"
	Courses   = "courses"
	Reviews   = "reviews"
	Users     = "users"
)

type BootcampRepository interface {
	query.Source[models.Bootcamp]
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bootcamp, error)
	FindWithinRadius(ctx context.Context, lng, lat, radians float64) ([]models.Bootcamp, error)
	Create(ctx context.Context, b *models.Bootcamp) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) (*models.Bootcamp, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
}

type CourseRepository interface {
	query.Source[models.Course]
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Course, error)
	Create(ctx context.Context, c *models.Course) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
	// AverageTuition reports ok=false when the bootcamp has no courses.
	AverageTuition(ctx context.Context, bootcampID primitive.ObjectID) (avg float64, ok bool, err error)
}

type ReviewRepository interface {
	query.Source[models.Review]
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Review, error)
	Create(ctx context.Context, r *models.Review) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
	// AverageRating reports ok=false when the bootcamp has no reviews.
	AverageRating(ctx context.Context, bootcampID primitive.ObjectID) (avg float64, ok bool, err error)
}

type UserRepository interface {
	query.Source[models.User]
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByResetToken matches the hashed token and an expiry after now.
	FindByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteAll(ctx context.Context) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Bootcamps BootcampRepository
	Courses   CourseRepository
	Reviews   ReviewRepository
	Users     UserRepository

	Close func(ctx context.Context) error
}

var bootcampSummary = []string{"name", "description"}

// PopulateCourses embeds a bootcamp's courses.
var PopulateCourses = query.Populate{
	Path: "courses", From: Courses, LocalField: "_id", ForeignField: "bootcamp",
}

// PopulateBootcamp embeds the name and description of the parent bootcamp.
var PopulateBootcamp = query.Populate{
	Path: "bootcampDetail", From: Bootcamps, LocalField: "bootcamp", ForeignField: "_id",
	Select: bootcampSummary, One: true,
}
