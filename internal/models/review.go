package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title" validate:"required,max=100"`
	Text      string             `bson:"text" json:"text" validate:"required"`
	Rating    int                `bson:"rating" json:"rating" validate:"required,min=1,max=10"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	User      primitive.ObjectID `bson:"user" json:"user"`

	BootcampDetail *BootcampSummary `bson:"bootcampDetail,omitempty" json:"bootcampDetail,omitempty"`
}

func (r *Review) OwnerID() primitive.ObjectID { return r.User }
