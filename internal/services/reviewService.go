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

type ReviewRequest struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=10"`
}

type ReviewPatch struct {
	Title  *string `json:"title" bson:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Text   *string `json:"text" bson:"text,omitempty" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" bson:"rating,omitempty" validate:"omitempty,min=1,max=10"`
}

type ReviewService struct {
	bootcamps  repository.BootcampRepository
	reviews    repository.ReviewRepository
	aggregates *AggregateService
	now        func() time.Time
}

func NewReviewService(store *repository.Store, aggregates *AggregateService) *ReviewService {
	return &ReviewService{
		bootcamps:  store.Bootcamps,
		reviews:    store.Reviews,
		aggregates: aggregates,
		now:        time.Now,
	}
}

func (s *ReviewService) ListReviews(ctx context.Context, q query.Query) (*query.Result[models.Review], error) {
	q.Populate = append(q.Populate, repository.PopulateBootcamp)
	return query.Run[models.Review](ctx, s.reviews, q)
}

func (s *ReviewService) ListBootcampReviews(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Review, error) {
	reviews, err := s.reviews.FindByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return r, nil
}

// AddReview records the principal's single review of a bootcamp. A second
// review by the same user fails on the unique (bootcamp, user) index.
func (s *ReviewService) AddReview(ctx context.Context, principal *models.User, bootcampID primitive.ObjectID, req ReviewRequest) (*models.Review, error) {
	if _, err := s.bootcamps.FindByID(ctx, bootcampID); err != nil {
		return nil, missingBootcamp(err, bootcampID)
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	r := &models.Review{
		ID:        primitive.NewObjectID(),
		Title:     req.Title,
		Text:      req.Text,
		Rating:    req.Rating,
		CreatedAt: s.now(),
		Bootcamp:  bootcampID,
		User:      principal.ID,
	}
	if err := models.Validate(r); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	s.aggregates.RecomputeAverageRating(ctx, bootcampID)
	return r, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, principal *models.User, id primitive.ObjectID, patch ReviewPatch) (*models.Review, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	if err := policy.Check(principal, policy.Update, "review", r); err != nil {
		return nil, err
	}
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	set, err := toSet(patch)
	if err != nil {
		return nil, err
	}
	updated, err := s.reviews.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, id)
	}
	if patch.Rating != nil {
		s.aggregates.RecomputeAverageRating(ctx, r.Bootcamp)
	}
	return updated, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, principal *models.User, id primitive.ObjectID) error {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return notFound(err, id)
	}
	if err := policy.Check(principal, policy.Delete, "review", r); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return notFound(err, id)
	}
	s.aggregates.RecomputeAverageRating(ctx, r.Bootcamp)
	return nil
}
