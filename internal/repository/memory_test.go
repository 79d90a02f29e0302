package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedCourses(t *testing.T, s *Store, bootcamp primitive.ObjectID, tuitions ...float64) {
	t.Helper()
	for i, tu := range tuitions {
		c := &models.Course{
			ID:           primitive.NewObjectID(),
			Title:        "course",
			Weeks:        i + 1,
			Tuition:      tu,
			MinimumSkill: models.SkillBeginner,
			CreatedAt:    time.Now().Add(time.Duration(i) * time.Second),
			Bootcamp:     bootcamp,
		}
		if err := s.Courses.Create(context.Background(), c); err != nil {
			t.Fatalf("create course: %v", err)
		}
	}
}

func TestMemoryFilterOperators(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	bc := primitive.NewObjectID()
	seedCourses(t, s, bc, 1000, 5000, 9000, 12000)

	tests := []struct {
		params map[string]string
		want   int
	}{
		{map[string]string{"tuition[gte]": "5000"}, 3},
		{map[string]string{"tuition[gt]": "5000", "tuition[lte]": "9000"}, 1},
		{map[string]string{"tuition[lt]": "1000"}, 0},
		{map[string]string{"tuition": "5000", "tuition[lte]": "9000"}, 1},
		{map[string]string{"tuition": "12000", "tuition[lte]": "9000"}, 0},
		{map[string]string{"weeks[in]": "1,4"}, 2},
		{map[string]string{"minimumSkill": "beginner"}, 4},
		{map[string]string{"bootcamp": bc.Hex()}, 4},
		{map[string]string{"bootcamp": primitive.NewObjectID().Hex()}, 0},
	}
	for _, tt := range tests {
		q, err := query.Parse(tt.params)
		if err != nil {
			t.Fatal(err)
		}
		n, err := s.Courses.Count(ctx, q.Filter)
		if err != nil {
			t.Fatal(err)
		}
		if int(n) != tt.want {
			t.Errorf("%v: count = %d, want %d", tt.params, n, tt.want)
		}
	}
}

func TestMemorySortAndPage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedCourses(t, s, primitive.NewObjectID(), 3, 1, 2)

	q, _ := query.Parse(map[string]string{"sort": "tuition"})
	got, err := s.Courses.Find(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Tuition != 1 || got[2].Tuition != 3 {
		t.Errorf("ascending sort wrong: %+v", got)
	}

	q, _ = query.Parse(map[string]string{"limit": "2", "page": "2"})
	got, _ = s.Courses.Find(ctx, q)
	// default sort is newest first, so the oldest course is on page 2
	if len(got) != 1 || got[0].Tuition != 3 {
		t.Errorf("page 2 = %+v", got)
	}

	// out of range offsets are clamped instead of slicing out of bounds
	for _, q := range []query.Query{
		{Page: 1 << 40, Limit: 1 << 30},
		{Page: -5, Limit: 2},
		{Page: 1, Limit: int(^uint(0) >> 1)},
	} {
		got, err := s.Courses.Find(ctx, q)
		if err != nil {
			t.Fatalf("page=%d limit=%d: %v", q.Page, q.Limit, err)
		}
		if q.Page == 1 && len(got) != 3 {
			t.Errorf("huge limit returned %d courses", len(got))
		}
		if len(got) > 3 {
			t.Errorf("page=%d limit=%d returned %d courses", q.Page, q.Limit, len(got))
		}
	}
}

func TestMemoryUniqueReview(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	bc, user := primitive.NewObjectID(), primitive.NewObjectID()

	r := &models.Review{ID: primitive.NewObjectID(), Title: "t", Text: "x", Rating: 8, Bootcamp: bc, User: user}
	if err := s.Reviews.Create(ctx, r); err != nil {
		t.Fatal(err)
	}
	dup := *r
	dup.ID = primitive.NewObjectID()
	if err := s.Reviews.Create(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	other := dup
	other.User = primitive.NewObjectID()
	if err := s.Reviews.Create(ctx, &other); err != nil {
		t.Fatalf("different user should be allowed: %v", err)
	}
}

func TestMemoryUpdateAndUnset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cost := 100.0
	b := &models.Bootcamp{ID: primitive.NewObjectID(), Name: "A", AverageCost: &cost, Careers: []string{"Other"}}
	if err := s.Bootcamps.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := s.Bootcamps.Update(ctx, b.ID, bson.M{"description": "new"}, "averageCost")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "new" || got.AverageCost != nil || got.Name != "A" {
		t.Errorf("update result = %+v", got)
	}

	if _, err := s.Bootcamps.Update(ctx, primitive.NewObjectID(), bson.M{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Bootcamps.Delete(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Bootcamps.FindByID(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryAverage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	bc := primitive.NewObjectID()

	if _, ok, err := s.Courses.AverageTuition(ctx, bc); ok || err != nil {
		t.Fatalf("empty bootcamp: ok=%v err=%v", ok, err)
	}
	seedCourses(t, s, bc, 1000, 2000)
	seedCourses(t, s, primitive.NewObjectID(), 99999)

	avg, ok, err := s.Courses.AverageTuition(ctx, bc)
	if err != nil || !ok || avg != 1500 {
		t.Errorf("avg=%v ok=%v err=%v", avg, ok, err)
	}
}

func TestMemoryRadiusAndPopulate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	boston := &models.Bootcamp{ID: primitive.NewObjectID(), Name: "Boston", Location: models.NewPoint(-71.06, 42.36)}
	cambridge := &models.Bootcamp{ID: primitive.NewObjectID(), Name: "Cambridge", Location: models.NewPoint(-71.11, 42.37)}
	la := &models.Bootcamp{ID: primitive.NewObjectID(), Name: "LA", Location: models.NewPoint(-118.24, 34.05)}
	for _, b := range []*models.Bootcamp{boston, cambridge, la} {
		if err := s.Bootcamps.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	near, err := s.Bootcamps.FindWithinRadius(ctx, -71.06, 42.36, 50.0/6378)
	if err != nil {
		t.Fatal(err)
	}
	if len(near) != 2 {
		t.Errorf("expected 2 bootcamps within 50km, got %d", len(near))
	}

	seedCourses(t, s, boston.ID, 1000)
	q, _ := query.Parse(map[string]string{"name": "Boston"})
	q.Populate = []query.Populate{PopulateCourses}
	got, err := s.Bootcamps.Find(ctx, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0].Courses) != 1 {
		t.Fatalf("populate courses failed: %+v", got)
	}

	c, err := s.Courses.FindByID(ctx, got[0].Courses[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if c.BootcampDetail == nil || c.BootcampDetail.Name != "Boston" {
		t.Errorf("bootcamp not populated on course: %+v", c.BootcampDetail)
	}
}

func TestMemoryResetToken(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	u := &models.User{ID: primitive.NewObjectID(), Name: "n", Email: "a@b.co", Role: models.RoleUser}
	raw, _ := u.NewResetToken(now)
	if err := s.Users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Users.FindByResetToken(ctx, models.HashResetToken(raw), now); err != nil {
		t.Errorf("valid token not found: %v", err)
	}
	if _, err := s.Users.FindByResetToken(ctx, models.HashResetToken(raw), now.Add(11*time.Minute)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired token matched: %v", err)
	}
	if _, err := s.Users.FindByResetToken(ctx, models.HashResetToken("nope"), now); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong token matched: %v", err)
	}

	dup := &models.User{ID: primitive.NewObjectID(), Name: "m", Email: "a@b.co", Role: models.RoleUser}
	if err := s.Users.Create(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected duplicate email error, got %v", err)
	}
}
