package policy

import (
	"errors"
	"net/http"
	"testing"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheck(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Role: models.RolePublisher}
	other := &models.User{ID: primitive.NewObjectID(), Role: models.RolePublisher}
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	bootcamp := &models.Bootcamp{User: owner.ID}

	tests := []struct {
		name      string
		principal *models.User
		status    int
	}{
		{"owner", owner, 0},
		{"admin", admin, 0},
		{"other publisher", other, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.principal, Update, "bootcamp", bootcamp)
			if tt.status == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var er *common.ErrorResponse
			if !errors.As(err, &er) || er.StatusCode != tt.status {
				t.Fatalf("expected %d, got %v", tt.status, err)
			}
		})
	}
}

func TestCheckMessage(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	err := Check(u, Delete, "review", &models.Review{User: primitive.NewObjectID()})
	want := "User " + u.ID.Hex() + " is not authorized to delete this review"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole("admin", "publisher", "admin") {
		t.Error("admin should be allowed")
	}
	if HasRole("user", "publisher", "admin") {
		t.Error("user should not be allowed")
	}
}
