// Package policy decides whether a principal may act on a resource.
package policy

import (
	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	Update      Action = "update"
	Delete      Action = "delete"
	UploadPhoto Action = "upload a photo for"
	AddCourse   Action = "add a course to"
)

// Owned is implemented by every document that records its creator.
type Owned interface {
	OwnerID() primitive.ObjectID
}

// Check permits the action when the principal created the resource or is an admin.
func Check(principal *models.User, action Action, kind string, resource Owned) error {
	if principal == nil {
		return common.ErrNotAuthorized
	}
	if principal.Role == models.RoleAdmin || principal.ID == resource.OwnerID() {
		return nil
	}
	return common.Forbidden("User %s is not authorized to %s this %s", principal.ID.Hex(), action, kind)
}

// HasRole reports whether role is one of allowed.
func HasRole(role string, allowed ...string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
