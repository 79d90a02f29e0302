package services

import (
	"context"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/policy"
	"github.com/arzan03/DevCamper/internal/query"
	"github.com/arzan03/DevCamper/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseRequest struct {
	Title                string  `json:"title" validate:"required"`
	Description          string  `json:"description" validate:"required"`
	Weeks                int     `json:"weeks" validate:"required,min=1"`
	Tuition              float64 `json:"tuition" validate:"min=0"`
	MinimumSkill         string  `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

type CoursePatch struct {
	Title                *string  `json:"title" bson:"title,omitempty" validate:"omitempty,min=1"`
	Description          *string  `json:"description" bson:"description,omitempty" validate:"omitempty,min=1"`
	Weeks                *int     `json:"weeks" bson:"weeks,omitempty" validate:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" bson:"tuition,omitempty" validate:"omitempty,min=0"`
	MinimumSkill         *string  `json:"minimumSkill" bson:"minimumSkill,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable" bson:"scholarshipAvailable,omitempty"`
}

type CourseService struct {
	bootcamps  repository.BootcampRepository
	courses    repository.CourseRepository
	aggregates *AggregateService
	now        func() time.Time
}

func NewCourseService(store *repository.Store, aggregates *AggregateService) *CourseService {
	return &CourseService{
		bootcamps:  store.Bootcamps,
		courses:    store.Courses,
		aggregates: aggregates,
		now:        time.Now,
	}
}

// ListCourses runs the advanced-results query with the parent bootcamp embedded.
func (s *CourseService) ListCourses(ctx context.Context, q query.Query) (*query.Result[models.Course], error) {
	q.Populate = append(q.Populate, repository.PopulateBootcamp)
	return query.Run[models.Course](ctx, s.courses, q)
}

func (s *CourseService) ListBootcampCourses(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Course, error) {
	courses, err := s.courses.FindByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return c, nil
}

// AddCourse attaches a course to a bootcamp the principal owns.
func (s *CourseService) AddCourse(ctx context.Context, principal *models.User, bootcampID primitive.ObjectID, req CourseRequest) (*models.Course, error) {
	b, err := s.bootcamps.FindByID(ctx, bootcampID)
	if err != nil {
		return nil, missingBootcamp(err, bootcampID)
	}
	if err := policy.Check(principal, policy.AddCourse, "bootcamp", b); err != nil {
		return nil, err
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	c := &models.Course{
		ID:                   primitive.NewObjectID(),
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
		CreatedAt:            s.now(),
		Bootcamp:             bootcampID,
		User:                 principal.ID,
	}
	if err := models.Validate(c); err != nil {
		return nil, err
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.aggregates.RecomputeAverageCost(ctx, bootcampID)
	return c, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, principal *models.User, id primitive.ObjectID, patch CoursePatch) (*models.Course, error) {
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	if err := policy.Check(principal, policy.Update, "course", c); err != nil {
		return nil, err
	}
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	set, err := toSet(patch)
	if err != nil {
		return nil, err
	}
	updated, err := s.courses.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, id)
	}
	if patch.Tuition != nil {
		s.aggregates.RecomputeAverageCost(ctx, c.Bootcamp)
	}
	return updated, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, principal *models.User, id primitive.ObjectID) error {
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return notFound(err, id)
	}
	if err := policy.Check(principal, policy.Delete, "course", c); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return notFound(err, id)
	}
	s.aggregates.RecomputeAverageCost(ctx, c.Bootcamp)
	return nil
}
