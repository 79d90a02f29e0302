package services

import (
	"context"
	"errors"
	"log"
	"math"

	"github.com/arzan03/DevCamper/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AggregateService keeps the derived averages of a bootcamp current. It is
// called after every course or review write has been committed; failures
// are logged and never reach the client.
type AggregateService struct {
	bootcamps repository.BootcampRepository
	courses   repository.CourseRepository
	reviews   repository.ReviewRepository
	logger    *log.Logger
}

func NewAggregateService(store *repository.Store, logger *log.Logger) *AggregateService {
	return &AggregateService{
		bootcamps: store.Bootcamps,
		courses:   store.Courses,
		reviews:   store.Reviews,
		logger:    logger,
	}
}

// AverageCost is the mean tuition rounded up to the next multiple of ten.
func AverageCost(avg float64) float64 {
	return math.Ceil(avg/10) * 10
}

func (s *AggregateService) RecomputeAverageCost(ctx context.Context, bootcampID primitive.ObjectID) {
	avg, ok, err := s.courses.AverageTuition(ctx, bootcampID)
	if err != nil {
		s.logger.Printf("average cost for bootcamp %s: %v", bootcampID.Hex(), err)
		return
	}
	s.store(ctx, bootcampID, "averageCost", AverageCost(avg), ok)
}

func (s *AggregateService) RecomputeAverageRating(ctx context.Context, bootcampID primitive.ObjectID) {
	avg, ok, err := s.reviews.AverageRating(ctx, bootcampID)
	if err != nil {
		s.logger.Printf("average rating for bootcamp %s: %v", bootcampID.Hex(), err)
		return
	}
	s.store(ctx, bootcampID, "averageRating", avg, ok)
}

func (s *AggregateService) store(ctx context.Context, bootcampID primitive.ObjectID, field string, value float64, ok bool) {
	var err error
	if ok {
		_, err = s.bootcamps.Update(ctx, bootcampID, bson.M{field: value})
	} else {
		_, err = s.bootcamps.Update(ctx, bootcampID, bson.M{}, field)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Printf("store %s for bootcamp %s: %v", field, bootcampID.Hex(), err)
	}
}
