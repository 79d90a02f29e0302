package repository

import (
	"context"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewMongoStore wires the Mongo repositories onto db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Bootcamps: &mongoBootcamps{newMongoCollection[models.Bootcamp](db, Bootcamps)},
		Courses:   &mongoCourses{newMongoCollection[models.Course](db, Courses)},
		Reviews:   &mongoReviews{newMongoCollection[models.Review](db, Reviews)},
		Users:     &mongoUsers{newMongoCollection[models.User](db, Users)},
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

type mongoBootcamps struct {
	*mongoCollection[models.Bootcamp]
}

func (r *mongoBootcamps) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bootcamp, error) {
	return r.mongoCollection.FindByID(ctx, id)
}

func (r *mongoBootcamps) FindWithinRadius(ctx context.Context, lng, lat, radians float64) ([]models.Bootcamp, error) {
	return r.FindAll(ctx, bson.M{
		"location": bson.M{"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{lng, lat}, radians}}},
	})
}

func (r *mongoBootcamps) Create(ctx context.Context, b *models.Bootcamp) error {
	return r.Insert(ctx, b)
}

func (r *mongoBootcamps) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

type mongoCourses struct {
	*mongoCollection[models.Course]
}

func (r *mongoCourses) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	return r.mongoCollection.FindByID(ctx, id, PopulateBootcamp)
}

func (r *mongoCourses) FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Course, error) {
	return r.FindAll(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *mongoCourses) Create(ctx context.Context, c *models.Course) error {
	return r.Insert(ctx, c)
}

func (r *mongoCourses) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Course, error) {
	return r.mongoCollection.Update(ctx, id, set)
}

func (r *mongoCourses) DeleteByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) error {
	return r.DeleteMany(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *mongoCourses) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

func (r *mongoCourses) AverageTuition(ctx context.Context, bootcampID primitive.ObjectID) (float64, bool, error) {
	return r.Average(ctx, bson.M{"bootcamp": bootcampID}, "tuition")
}

type mongoReviews struct {
	*mongoCollection[models.Review]
}

func (r *mongoReviews) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return r.mongoCollection.FindByID(ctx, id, PopulateBootcamp)
}

func (r *mongoReviews) FindByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]models.Review, error) {
	return r.FindAll(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *mongoReviews) Create(ctx context.Context, rv *models.Review) error {
	return r.Insert(ctx, rv)
}

func (r *mongoReviews) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Review, error) {
	return r.mongoCollection.Update(ctx, id, set)
}

func (r *mongoReviews) DeleteByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) error {
	return r.DeleteMany(ctx, bson.M{"bootcamp": bootcampID})
}

func (r *mongoReviews) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

func (r *mongoReviews) AverageRating(ctx context.Context, bootcampID primitive.ObjectID) (float64, bool, error) {
	return r.Average(ctx, bson.M{"bootcamp": bootcampID}, "rating")
}

type mongoUsers struct {
	*mongoCollection[models.User]
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.mongoCollection.FindByID(ctx, id)
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"email": email})
}

func (r *mongoUsers) FindByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	return r.FindOne(ctx, bson.M{
		"resetPasswordToken":  hashed,
		"resetPasswordExpire": bson.M{"$gt": now},
	})
}

func (r *mongoUsers) Create(ctx context.Context, u *models.User) error {
	return r.Insert(ctx, u)
}

func (r *mongoUsers) Save(ctx context.Context, u *models.User) error {
	return r.Replace(ctx, u.ID, u)
}

func (r *mongoUsers) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	return r.mongoCollection.Update(ctx, id, set)
}

func (r *mongoUsers) DeleteAll(ctx context.Context) error {
	return r.DeleteMany(ctx, bson.M{})
}

var (
	_ BootcampRepository = (*mongoBootcamps)(nil)
	_ CourseRepository   = (*mongoCourses)(nil)
	_ ReviewRepository   = (*mongoReviews)(nil)
	_ UserRepository     = (*mongoUsers)(nil)
)
