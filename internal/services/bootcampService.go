package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/policy"
	"github.com/arzan03/DevCamper/internal/query"
	"github.com/arzan03/DevCamper/internal/repository"
	"github.com/arzan03/DevCamper/internal/storage"
	"github.com/arzan03/DevCamper/internal/utils"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EarthRadiusKm converts a search distance to radians.
const EarthRadiusKm = 6378.0

type BootcampRequest struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,url"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers" validate:"required,min=1,dive,career"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// BootcampPatch holds the fields a client may change. Derived fields
// (slug, location, averages, photo, owner) are not accepted.
type BootcampPatch struct {
	Name          *string  `json:"name" bson:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description   *string  `json:"description" bson:"description,omitempty" validate:"omitempty,min=1,max=500"`
	Website       *string  `json:"website" bson:"website,omitempty" validate:"omitempty,url"`
	Phone         *string  `json:"phone" bson:"phone,omitempty" validate:"omitempty,max=20"`
	Email         *string  `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Address       *string  `json:"address" bson:"-" validate:"omitempty,min=1"`
	Careers       []string `json:"careers" bson:"careers,omitempty" validate:"omitempty,min=1,dive,career"`
	Housing       *bool    `json:"housing" bson:"housing,omitempty"`
	JobAssistance *bool    `json:"jobAssistance" bson:"jobAssistance,omitempty"`
	JobGuarantee  *bool    `json:"jobGuarantee" bson:"jobGuarantee,omitempty"`
	AcceptGi      *bool    `json:"acceptGi" bson:"acceptGi,omitempty"`
}

type BootcampService struct {
	bootcamps repository.BootcampRepository
	courses   repository.CourseRepository
	reviews   repository.ReviewRepository
	geocoder  Geocoder
	photos    storage.PhotoStore
	logger    *log.Logger
	now       func() time.Time

	// SinglePerPublisher limits non-admin users to one bootcamp.
	SinglePerPublisher bool
}

func NewBootcampService(store *repository.Store, geocoder Geocoder, photos storage.PhotoStore, logger *log.Logger) *BootcampService {
	return &BootcampService{
		bootcamps:          store.Bootcamps,
		courses:            store.Courses,
		reviews:            store.Reviews,
		geocoder:           geocoder,
		photos:             photos,
		logger:             logger,
		now:                time.Now,
		SinglePerPublisher: true,
	}
}

// ListBootcamps runs the advanced-results query with courses embedded.
func (s *BootcampService) ListBootcamps(ctx context.Context, q query.Query) (*query.Result[models.Bootcamp], error) {
	q.Populate = append(q.Populate, repository.PopulateCourses)
	return query.Run[models.Bootcamp](ctx, s.bootcamps, q)
}

func (s *BootcampService) GetBootcamp(ctx context.Context, id primitive.ObjectID) (*models.Bootcamp, error) {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return b, nil
}

func (s *BootcampService) CreateBootcamp(ctx context.Context, principal *models.User, req BootcampRequest) (*models.Bootcamp, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	if s.SinglePerPublisher && principal.Role != models.RoleAdmin {
		n, err := s.bootcamps.Count(ctx, bson.M{"user": principal.ID})
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, common.BadRequest("The user with ID %s has already published a bootcamp", principal.ID.Hex())
		}
	}

	loc, err := s.locate(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	b := &models.Bootcamp{
		ID:            primitive.NewObjectID(),
		Name:          req.Name,
		Slug:          slug.Make(req.Name),
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Location:      loc,
		Careers:       req.Careers,
		Photo:         models.DefaultPhoto,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
		CreatedAt:     s.now(),
		User:          principal.ID,
	}
	if err := s.bootcamps.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BootcampService) UpdateBootcamp(ctx context.Context, principal *models.User, id primitive.ObjectID, patch BootcampPatch) (*models.Bootcamp, error) {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	if err := policy.Check(principal, policy.Update, "bootcamp", b); err != nil {
		return nil, err
	}
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	set, err := toSet(patch)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		set["slug"] = slug.Make(*patch.Name)
	}
	if patch.Address != nil {
		loc, err := s.locate(ctx, *patch.Address)
		if err != nil {
			return nil, err
		}
		set["location"] = loc
	}

	updated, err := s.bootcamps.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, id)
	}
	return updated, nil
}

// DeleteBootcamp removes the bootcamp together with its courses, reviews
// and photo.
func (s *BootcampService) DeleteBootcamp(ctx context.Context, principal *models.User, id primitive.ObjectID) error {
	b, err := s.bootcamps.FindByID(ctx, id)
	if err != nil {
		return notFound(err, id)
	}
	if err := policy.Check(principal, policy.Delete, "bootcamp", b); err != nil {
		return err
	}

	err = utils.RunParallelTasks(ctx,
		func(ctx context.Context) error { return s.courses.DeleteByBootcamp(ctx, id) },
		func(ctx context.Context) error { return s.reviews.DeleteByBootcamp(ctx, id) },
	)
	if err != nil {
		return err
	}

	if b.Photo != "" && b.Photo != models.DefaultPhoto && s.photos != nil {
		if err := s.photos.Remove(ctx, b.Photo); err != nil {
			s.logger.Printf("remove photo %s of bootcamp %s: %v", b.Photo, id.Hex(), err)
		}
	}

	return notFound(s.bootcamps.Delete(ctx, id), id)
}

// BootcampsInRadius finds bootcamps within distance km of a postal code.
func (s *BootcampService) BootcampsInRadius(ctx context.Context, zipcode string, distance float64) ([]models.Bootcamp, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return nil, common.BadRequest("Distance must be a positive number")
	}
	loc, err := s.locate(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	radians := distance / EarthRadiusKm
	found, err := s.bootcamps.FindWithinRadius(ctx, loc.Coordinates[0], loc.Coordinates[1], radians)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []models.Bootcamp{}
	}
	return found, nil
}

func (s *BootcampService) locate(ctx context.Context, address string) (*models.Location, error) {
	loc, err := s.geocoder.Geocode(ctx, address)
	if errors.Is(err, ErrAddressNotFound) {
		return nil, common.BadRequest("Could not find a location for %s", address)
	}
	if err != nil {
		return nil, err
	}
	return loc, nil
}
