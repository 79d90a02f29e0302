package services

import (
	"errors"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toSet turns a patch struct (pointer fields tagged omitempty) into a $set
// document holding only the supplied fields.
func toSet(patch interface{}) (bson.M, error) {
	raw, err := bson.Marshal(patch)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	return set, nil
}

// notFound names the id in the message when the lookup missed.
func notFound(err error, id primitive.ObjectID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return common.ResourceNotFound(id.Hex())
	}
	return err
}

func missingBootcamp(err error, id primitive.ObjectID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return common.NotFound("No bootcamp with the id of %s", id.Hex())
	}
	return err
}
