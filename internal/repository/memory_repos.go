package repository

import (
	"context"
	"math"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStore returns repositories backed by process memory. Unique
// indexes mirror the ones created by db.EnsureIndexes.
func NewMemoryStore() *Store {
	bootcamps := &memBootcamps{memCollection: newMemCollection[models.Bootcamp](Bootcamps, []string{"name"})}
	courses := &memCourses{memCollection: newMemCollection[models.Course](Courses), bootcamps: bootcamps}
	reviews := &memReviews{
		memCollection: newMemCollection[models.Review](Reviews, []string{"bootcamp", "user"}),
		bootcamps:     bootcamps,
	}
	bootcamps.courses = courses

	return &Store{
		Bootcamps: bootcamps,
		Courses:   courses,
		Reviews:   reviews,
		Users:     &memUsers{newMemCollection[models.User](Users, []string{"email"})},
		Close:     func(context.Context) error { return nil },
	}
}

func populates(q query.Query, path string) bool {
	for _, p := range q.Populate {
		if p.Path == path {
			return true
		}
	}
	return false
}

type memBootcamps struct {
	*memCollection[models.Bootcamp]
	courses *memCourses
}

func (r *memBootcamps) Find(ctx context.Context, q query.Query) ([]models.Bootcamp, error) {
	out, err := r.memCollection.Find(ctx, q)
	if err != nil || !populates(q, PopulateCourses.Path) {
		return out, err
	}
	for i := range out {
		courses, err := r.courses.FindByBootcamp(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Courses = courses
	}
	return out, nil
}

func (r *memBootcamps) summary(ctx context.Context, id primitive.ObjectID) *models.BootcampSummary {
	b, err := r.memCollection.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return &models.BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description}
}

// FindWithinRadius keeps bootcamps whose great-circle angle from the
// centre is within radians.
func (r *memBootcamps) FindWithinRadius(ctx context.Context, lng, lat, radians float64) ([]models.Bootcamp, error) {
	all, err := r.FindAll(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	out := []models.Bootcamp{}
	for _, b := range all {
		if b.Location == nil || len(b.Location.Coordinates) != 2 {
			continue
		}
		if centralAngle(lng, lat, b.Location.Coordinates[0], b.Location.Coordinates[1]) <= radians {
			out = append(out, b)
		}
	}
	return out, nil
}

func centralAngle(lng1, lat1, lng2, lat2 float64) float64 {
	rad := math.Pi / 180
	φ1, φ2 := lat1*rad, lat2*rad
	dφ := (lat2 - lat1) * rad
	dλ := (lng2 - lng1) * rad
	h := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}

func (r *memBootcamps) Create(ctx context.Context, b *models.Bootcamp) error {
	return r.Insert(ctx, b)
}

func (r *memBootcamps) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

type memCourses struct {
	*memCollection[models.Course]
	bootcamps *memBootcamps
}

func (r *memCourses) Find(ctx context.Context, q query.Query) ([]models.Course, error) {
	out, err := r.memCollection.Find(ctx, q)
	if err != nil || !populates(q, PopulateBootcamp.Path) {
		return out, err
	}
	for i := range out {
		out[i].BootcampDetail = r.bootcamps.summary(ctx, out[i].Bootcamp)
	}
	return out, nil
}

func (r *memCourses) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	c, err := r.memCollection.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.BootcampDetail = r.bootcamps.summary(ctx, c.Bootcamp)
	return c, nil
}

func (r *memCourses) FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Course, error) {
	return r.FindAll(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *memCourses) Create(ctx context.Context, c *models.Course) error {
	return r.Insert(ctx, c)
}

func (r *memCourses) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Course, error) {
	return r.memCollection.Update(ctx, id, set)
}

func (r *memCourses) DeleteByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) error {
	return r.DeleteMany(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *memCourses) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

func (r *memCourses) AverageTuition(ctx context.Context, bootcampID primitive.ObjectID) (float64, bool, error) {
	return r.Average(ctx, bson.M{"bootcamp": bootcampID}, "tuition")
}

type memReviews struct {
	*memCollection[models.Review]
	bootcamps *memBootcamps
}

func (r *memReviews) Find(ctx context.Context, q query.Query) ([]models.Review, error) {
	out, err := r.memCollection.Find(ctx, q)
	if err != nil || !populates(q, PopulateBootcamp.Path) {
		return out, err
	}
	for i := range out {
		out[i].BootcampDetail = r.bootcamps.summary(ctx, out[i].Bootcamp)
	}
	return out, nil
}

func (r *memReviews) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	rv, err := r.memCollection.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rv.BootcampDetail = r.bootcamps.summary(ctx, rv.Bootcamp)
	return rv, nil
}

func (r *memReviews) FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Review, error) {
	return r.FindAll(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *memReviews) Create(ctx context.Context, rv *models.Review) error {
	return r.Insert(ctx, rv)
}

func (r *memReviews) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Review, error) {
	return r.memCollection.Update(ctx, id, set)
}

func (r *memReviews) DeleteByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) error {
	return r.DeleteMany(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *memReviews) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

func (r *memReviews) AverageRating(ctx context.Context, bootcampID primitive.ObjectID) (float64, bool, error) {
	return r.Average(ctx, bson.M{"bootcamp": bootcampID}, "rating")
}

type memUsers struct {
	*memCollection[models.User]
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"email": email})
}

func (r *memUsers) FindByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	return r.FindOne(ctx, bson.M{
		"resetPasswordToken":  hashed,
		"resetPasswordExpire": bson.M{"$gt": now},
	})
}

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	return r.Insert(ctx, u)
}

func (r *memUsers) Save(ctx context.Context, u *models.User) error {
	return r.Replace(ctx, u.ID, u)
}

func (r *memUsers) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	return r.memCollection.Update(ctx, id, set)
}

func (r *memUsers) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

var (
	_ BootcampRepository = (*memBootcamps)(nil)
	_ CourseRepository   = (*memCourses)(nil)
	_ ReviewRepository   = (*memReviews)(nil)
	_ UserRepository     = (*memUsers)(nil)
)
