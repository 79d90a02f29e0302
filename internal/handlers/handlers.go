package handlers

import (
	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/query"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// objectID reads a path parameter as an ObjectID. A malformed id is
// reported the same way as an unknown one.
func objectID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	raw := c.Params(param)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, common.ResourceNotFound(raw)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return common.BadRequest("Invalid request body")
	}
	return nil
}

func parseQuery(c *fiber.Ctx) (query.Query, error) {
	return query.Parse(c.Queries())
}
