package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/repository"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/arzan03/DevCamper/internal/storage"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testPassword = "password123"

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, address string) (*models.Location, error) {
	loc := models.NewPoint(-71.104, 42.350)
	loc.FormattedAddress = address
	loc.Zipcode = "02215"
	return loc, nil
}

type stubMailer struct{}

func (stubMailer) Send(context.Context, services.Email) error { return nil }

type testServer struct {
	t         *testing.T
	app       *fiber.App
	store     *repository.Store
	uploadDir string
}

func newTestServer(t *testing.T, secureCookie bool) *testServer {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	store := repository.NewMemoryStore()
	uploadDir := t.TempDir()
	photos, err := storage.NewLocalStore(uploadDir)
	if err != nil {
		t.Fatal(err)
	}

	tokens := services.NewTokenService("test-secret", time.Hour)
	auth := services.NewAuthService(store.Users, tokens, stubMailer{}, discard)
	aggregates := services.NewAggregateService(store, discard)

	app := NewApp(discard, false, 0)
	RegisterRoutes(app, Handlers{
		Auth:      NewAuthHandler(auth, 24*time.Hour, secureCookie),
		Bootcamps: NewBootcampHandler(services.NewBootcampService(store, stubGeocoder{}, photos, discard), services.NewPhotoService(store.Bootcamps, photos, 1000, discard)),
		Courses:   NewCourseHandler(services.NewCourseService(store, aggregates)),
		Reviews:   NewReviewHandler(services.NewReviewService(store, aggregates)),
		Users:     NewUserHandler(services.NewUserService(store.Users)),
	}, auth)

	return &testServer{t: t, app: app, store: store, uploadDir: uploadDir}
}

type envelope struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
	Token      string          `json:"token"`
	Count      int             `json:"count"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Next *struct{ Page, Limit int } `json:"next"`
		Prev *struct{ Page, Limit int } `json:"prev"`
	} `json:"pagination"`
}

func (s *testServer) do(req *http.Request, token string) (*http.Response, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	var body envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL, raw, err)
		}
	}
	return resp, body
}

func (s *testServer) request(method, path, token string, payload interface{}) (*http.Response, envelope) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req, token)
}

func (s *testServer) expect(status int, method, path, token string, payload interface{}) envelope {
	s.t.Helper()
	resp, body := s.request(method, path, token, payload)
	if resp.StatusCode != status {
		s.t.Fatalf("%s %s: status %d, want %d (%s)", method, path, resp.StatusCode, status, body.Error)
	}
	return body
}

func (s *testServer) register(name, email, role string) string {
	s.t.Helper()
	body := s.expect(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": testPassword, "role": role,
	})
	if body.Token == "" {
		s.t.Fatal("register returned no token")
	}
	return body.Token
}

// admin creates an admin directly in the store since the API never grants it.
func (s *testServer) admin() string {
	s.t.Helper()
	u := &models.User{ID: primitive.NewObjectID(), Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, CreatedAt: time.Now()}
	if err := u.SetPassword(testPassword); err != nil {
		s.t.Fatal(err)
	}
	if err := s.store.Users.Create(context.Background(), u); err != nil {
		s.t.Fatal(err)
	}
	body := s.expect(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": u.Email, "password": testPassword,
	})
	return body.Token
}

func (s *testServer) createBootcamp(token, name string) models.Bootcamp {
	s.t.Helper()
	body := s.expect(http.StatusCreated, http.MethodPost, "/api/v1/bootcamps", token, map[string]interface{}{
		"name":        name,
		"description": "Is coding your passion?",
		"address":     "233 Bay State Rd Boston MA 02215",
		"careers":     []string{"Web Development", "Business"},
		"housing":     true,
	})
	var b models.Bootcamp
	if err := json.Unmarshal(body.Data, &b); err != nil {
		s.t.Fatal(err)
	}
	return b
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "John Doe", "email": "john@example.com", "password": testPassword,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d (%s)", resp.StatusCode, body.Error)
	}
	cookie := resp.Header.Get("Set-Cookie")
	if !strings.Contains(cookie, "token="+body.Token) || !strings.Contains(strings.ToLower(cookie), "httponly") {
		t.Errorf("unexpected cookie %q", cookie)
	}
	if strings.Contains(strings.ToLower(cookie), "secure") {
		t.Errorf("secure cookie outside production: %q", cookie)
	}

	me := s.expect(http.StatusOK, http.MethodGet, "/api/v1/auth/me", body.Token, nil)
	var user map[string]interface{}
	if err := json.Unmarshal(me.Data, &user); err != nil {
		t.Fatal(err)
	}
	if user["email"] != "john@example.com" || user["role"] != "user" {
		t.Errorf("me = %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password serialized")
	}

	s.expect(http.StatusUnauthorized, http.MethodGet, "/api/v1/auth/me", "", nil)
	s.expect(http.StatusUnauthorized, http.MethodGet, "/api/v1/auth/me", "garbage", nil)

	wrong := s.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "john@example.com", "password": "nope",
	})
	unknown := s.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": testPassword,
	})
	if wrong.Error != unknown.Error || wrong.Success {
		t.Errorf("login failures differ: %q vs %q", wrong.Error, unknown.Error)
	}

	resp, _ = s.request(http.MethodGet, "/api/v1/auth/logout", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Set-Cookie"), "token=none") {
		t.Errorf("logout: %d %q", resp.StatusCode, resp.Header.Get("Set-Cookie"))
	}
}

func TestSecureCookieInProduction(t *testing.T) {
	s := newTestServer(t, true)
	resp, _ := s.request(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "password": testPassword,
	})
	if !strings.Contains(strings.ToLower(resp.Header.Get("Set-Cookie")), "secure") {
		t.Errorf("expected secure cookie, got %q", resp.Header.Get("Set-Cookie"))
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, false)
	body := s.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "password": testPassword,
	})
	if !strings.Contains(body.Error, "Please add a name") || !strings.Contains(body.Error, "Please add a valid email") {
		t.Errorf("error = %q", body.Error)
	}

	s.register("Dup", "dup@example.com", "")
	body = s.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Dup", "email": "dup@example.com", "password": testPassword,
	})
	if body.Error != "Duplicate field value entered" {
		t.Errorf("error = %q", body.Error)
	}

	body = s.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Long", "email": "long@example.com", "password": strings.Repeat("x", 80),
	})
	if !strings.Contains(body.Error, "password") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestBootcampOwnership(t *testing.T) {
	s := newTestServer(t, false)
	owner := s.register("Owner", "owner@example.com", models.RolePublisher)
	other := s.register("Other", "other@example.com", models.RolePublisher)
	user := s.register("User", "user@example.com", models.RoleUser)
	b := s.createBootcamp(owner, "Devworks Bootcamp")

	path := "/api/v1/bootcamps/" + b.ID.Hex()
	s.expect(http.StatusForbidden, http.MethodPut, path, other, map[string]string{"name": "Stolen"})
	s.expect(http.StatusForbidden, http.MethodDelete, path, other, nil)
	s.expect(http.StatusForbidden, http.MethodPut, path, user, map[string]string{"name": "Stolen"})

	got := s.expect(http.StatusOK, http.MethodGet, path, "", nil)
	var current models.Bootcamp
	if err := json.Unmarshal(got.Data, &current); err != nil {
		t.Fatal(err)
	}
	if current.Name != "Devworks Bootcamp" {
		t.Fatalf("record changed to %q", current.Name)
	}

	admin := s.admin()
	s.expect(http.StatusOK, http.MethodPut, path, admin, map[string]string{"name": "Admin Renamed"})
	s.expect(http.StatusOK, http.MethodDelete, path, owner, nil)
	s.expect(http.StatusNotFound, http.MethodGet, path, "", nil)
}

func TestResourceNotFound(t *testing.T) {
	s := newTestServer(t, false)
	body := s.expect(http.StatusNotFound, http.MethodGet, "/api/v1/bootcamps/abc", "", nil)
	if body.Error != "Resource not found with id of abc" {
		t.Errorf("error = %q", body.Error)
	}
	id := primitive.NewObjectID().Hex()
	for _, resource := range []string{"courses", "reviews", "bootcamps"} {
		body = s.expect(http.StatusNotFound, http.MethodGet, "/api/v1/"+resource+"/"+id, "", nil)
		if body.Error != "Resource not found with id of "+id {
			t.Errorf("%s: error = %q", resource, body.Error)
		}
	}
}

func TestBootcampPagination(t *testing.T) {
	s := newTestServer(t, false)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	start := time.Now()
	for i := 0; i < 25; i++ {
		b := &models.Bootcamp{
			ID:          primitive.NewObjectID(),
			Name:        fmt.Sprintf("Bootcamp %02d", i),
			Description: "desc",
			Careers:     []string{"Other"},
			Photo:       models.DefaultPhoto,
			Housing:     i%2 == 0,
			CreatedAt:   start.Add(time.Duration(i) * time.Second),
			User:        owner,
		}
		if err := s.store.Bootcamps.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	page2 := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps?limit=10&page=2", "", nil)
	if page2.Count != 10 || page2.Pagination.Prev == nil || page2.Pagination.Prev.Page != 1 ||
		page2.Pagination.Next == nil || page2.Pagination.Next.Page != 3 {
		t.Fatalf("page 2: count=%d pagination=%+v", page2.Count, page2.Pagination)
	}

	page3 := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps?limit=10&page=3", "", nil)
	if page3.Count != 5 || page3.Pagination.Next != nil || page3.Pagination.Prev == nil {
		t.Fatalf("page 3: count=%d pagination=%+v", page3.Count, page3.Pagination)
	}

	sorted := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps?select=name,housing&sort=name&housing=true&limit=3", "", nil)
	var items []map[string]interface{}
	if err := json.Unmarshal(sorted.Data, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0]["name"] != "Bootcamp 00" || items[1]["name"] != "Bootcamp 02" {
		t.Fatalf("items = %v", items)
	}
	if _, ok := items[0]["description"]; ok {
		t.Error("description returned despite select")
	}

	for _, path := range []string{
		"/api/v1/bootcamps?page=2305843009213693953&limit=4",
		"/api/v1/bootcamps?page=9223372036854775807",
	} {
		s.expect(http.StatusBadRequest, http.MethodGet, path, "", nil)
	}
	capped := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps?limit=100000", "", nil)
	if capped.Count != 25 || capped.Pagination.Next != nil {
		t.Errorf("capped limit: count=%d pagination=%+v", capped.Count, capped.Pagination)
	}
}

func TestBootcampsInRadiusDistance(t *testing.T) {
	s := newTestServer(t, false)
	owner := s.register("Owner", "owner@example.com", models.RolePublisher)
	s.createBootcamp(owner, "Near Camp")

	found := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps/radius/02215/10", "", nil)
	if found.Count != 1 {
		t.Errorf("count = %d", found.Count)
	}
	for _, d := range []string{"NaN", "Inf", "-Inf", "-5", "ten"} {
		s.expect(http.StatusBadRequest, http.MethodGet, "/api/v1/bootcamps/radius/02215/"+d, "", nil)
	}
}

func TestCoursesAndAverageCost(t *testing.T) {
	s := newTestServer(t, false)
	owner := s.register("Owner", "owner@example.com", models.RolePublisher)
	b := s.createBootcamp(owner, "Cost Camp")

	coursePath := "/api/v1/bootcamps/" + b.ID.Hex() + "/courses"
	created := s.expect(http.StatusCreated, http.MethodPost, coursePath, owner, map[string]interface{}{
		"title": "Front End", "description": "HTML CSS JS", "weeks": 8, "tuition": 8000, "minimumSkill": "beginner",
	})
	var course models.Course
	if err := json.Unmarshal(created.Data, &course); err != nil {
		t.Fatal(err)
	}

	list := s.expect(http.StatusOK, http.MethodGet, coursePath, "", nil)
	if list.Count != 1 {
		t.Fatalf("count = %d", list.Count)
	}

	for query, want := range map[string]int{
		"tuition=8000&tuition%5Blte%5D=9000": 1,
		"tuition%5Blte%5D=9000&tuition=7000": 0,
	} {
		filtered := s.expect(http.StatusOK, http.MethodGet, "/api/v1/courses?"+query, "", nil)
		if filtered.Count != want {
			t.Errorf("%s: count = %d, want %d", query, filtered.Count, want)
		}
	}

	all := s.expect(http.StatusOK, http.MethodGet, "/api/v1/courses", "", nil)
	var courses []models.Course
	if err := json.Unmarshal(all.Data, &courses); err != nil {
		t.Fatal(err)
	}
	if len(courses) != 1 || courses[0].BootcampDetail == nil || courses[0].BootcampDetail.Name != "Cost Camp" {
		t.Fatalf("courses not populated: %+v", courses)
	}

	var camp models.Bootcamp
	got := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps/"+b.ID.Hex(), "", nil)
	_ = json.Unmarshal(got.Data, &camp)
	if camp.AverageCost == nil || *camp.AverageCost != 8000 {
		t.Fatalf("averageCost = %v", camp.AverageCost)
	}

	s.expect(http.StatusOK, http.MethodDelete, "/api/v1/courses/"+course.ID.Hex(), owner, nil)
	got = s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps/"+b.ID.Hex(), "", nil)
	camp = models.Bootcamp{}
	_ = json.Unmarshal(got.Data, &camp)
	if camp.AverageCost != nil {
		t.Errorf("averageCost = %v after deleting last course", *camp.AverageCost)
	}
}

func TestReviews(t *testing.T) {
	s := newTestServer(t, false)
	owner := s.register("Owner", "owner@example.com", models.RolePublisher)
	reviewer := s.register("Reviewer", "reviewer@example.com", models.RoleUser)
	b := s.createBootcamp(owner, "Reviewed Camp")
	path := "/api/v1/bootcamps/" + b.ID.Hex() + "/reviews"
	review := map[string]interface{}{"title": "Great", "text": "Learned a lot", "rating": 9}

	body := s.expect(http.StatusForbidden, http.MethodPost, path, owner, review)
	if body.Error != "User role publisher is not authorized to access this route" {
		t.Errorf("error = %q", body.Error)
	}
	s.expect(http.StatusCreated, http.MethodPost, path, reviewer, review)
	body = s.expect(http.StatusBadRequest, http.MethodPost, path, reviewer, review)
	if body.Error != "Duplicate field value entered" {
		t.Errorf("error = %q", body.Error)
	}

	body = s.expect(http.StatusBadRequest, http.MethodPost, path, s.register("Second", "second@example.com", ""), map[string]interface{}{
		"title": "Bad", "text": "rating out of range", "rating": 11,
	})
	if !strings.Contains(body.Error, "rating") {
		t.Errorf("error = %q", body.Error)
	}
}

func (s *testServer) upload(path, token, filename, contentType string, content []byte) (*http.Response, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		s.t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req, token)
}

func TestPhotoUpload(t *testing.T) {
	s := newTestServer(t, false)
	owner := s.register("Owner", "owner@example.com", models.RolePublisher)
	other := s.register("Other", "other@example.com", models.RolePublisher)
	b := s.createBootcamp(owner, "Photo Camp")
	path := "/api/v1/bootcamps/" + b.ID.Hex() + "/photo"

	tests := []struct {
		name        string
		token       string
		filename    string
		contentType string
		size        int
		status      int
		message     string
	}{
		{"not owner", other, "a.jpg", "image/jpeg", 10, http.StatusForbidden, ""},
		{"not an image", owner, "a.txt", "text/plain", 10, http.StatusBadRequest, "Please upload an image file"},
		{"too large", owner, "a.jpg", "image/jpeg", 2000, http.StatusBadRequest, "Please upload an image less than 1000"},
		{"ok", owner, "campus.jpg", "image/jpeg", 100, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.upload(path, tt.token, tt.filename, tt.contentType, bytes.Repeat([]byte{0xff}, tt.size))
			if resp.StatusCode != tt.status {
				t.Fatalf("status %d, want %d (%s)", resp.StatusCode, tt.status, body.Error)
			}
			if tt.message != "" && body.Error != tt.message {
				t.Errorf("error = %q", body.Error)
			}
		})
	}

	want := "photo_" + b.ID.Hex() + ".jpg"
	if _, err := os.Stat(filepath.Join(s.uploadDir, want)); err != nil {
		t.Fatalf("photo not stored: %v", err)
	}
	got := s.expect(http.StatusOK, http.MethodGet, "/api/v1/bootcamps/"+b.ID.Hex(), "", nil)
	var camp models.Bootcamp
	_ = json.Unmarshal(got.Data, &camp)
	if camp.Photo != want {
		t.Errorf("photo = %q, want %q", camp.Photo, want)
	}

	req := httptest.NewRequest(http.MethodPut, path, nil)
	resp, body := s.do(req, owner)
	if resp.StatusCode != http.StatusBadRequest || body.Error != "Please upload a file" {
		t.Errorf("missing file: %d %q", resp.StatusCode, body.Error)
	}
}

func TestUsersAdminOnly(t *testing.T) {
	s := newTestServer(t, false)
	publisher := s.register("Pub", "pub@example.com", models.RolePublisher)
	s.expect(http.StatusForbidden, http.MethodGet, "/api/v1/users", publisher, nil)
	s.expect(http.StatusUnauthorized, http.MethodGet, "/api/v1/users", "", nil)

	admin := s.admin()
	list := s.expect(http.StatusOK, http.MethodGet, "/api/v1/users", admin, nil)
	if list.Count != 2 {
		t.Errorf("count = %d", list.Count)
	}

	created := s.expect(http.StatusCreated, http.MethodPost, "/api/v1/users", admin, map[string]string{
		"name": "Made By Admin", "email": "made@example.com", "password": testPassword, "role": "publisher",
	})
	var user models.User
	if err := json.Unmarshal(created.Data, &user); err != nil {
		t.Fatal(err)
	}

	s.expect(http.StatusOK, http.MethodPut, "/api/v1/users/"+user.ID.Hex(), admin, map[string]string{
		"name": "Renamed", "password": "ignored1",
	})
	s.expect(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "made@example.com", "password": testPassword,
	})

	s.expect(http.StatusOK, http.MethodDelete, "/api/v1/users/"+user.ID.Hex(), admin, nil)
	s.expect(http.StatusNotFound, http.MethodGet, "/api/v1/users/"+user.ID.Hex(), admin, nil)
}
