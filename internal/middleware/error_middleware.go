package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/repository"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorHandler writes every failure as {success:false, error}. The
// underlying error is only logged.
func ErrorHandler(logger *log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := Classify(err)
		if status >= http.StatusInternalServerError {
			logger.Printf("[%s] %s %s: %+v", c.GetRespHeader(fiber.HeaderXRequestID), c.Method(), c.OriginalURL(), err)
		} else {
			logger.Printf("[%s] %s %s: %d %v", c.GetRespHeader(fiber.HeaderXRequestID), c.Method(), c.OriginalURL(), status, err)
		}
		return c.Status(status).JSON(common.ErrorEnvelope{Success: false, Error: message})
	}
}

// Classify maps an error to its status code and client message.
func Classify(err error) (int, string) {
	var (
		resp       *common.ErrorResponse
		validation *models.ValidationError
		fiberErr   *fiber.Error
	)
	switch {
	case errors.As(err, &resp):
		return resp.StatusCode, resp.Message
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, repository.ErrDuplicate), mongo.IsDuplicateKeyError(err):
		return http.StatusBadRequest, "Duplicate field value entered"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, primitive.ErrInvalidHex):
		return http.StatusNotFound, "Resource not found"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	}
	return http.StatusInternalServerError, "Server Error"
}
