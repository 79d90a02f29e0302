package handlers

import (
	"net/http"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/middleware"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// GetReviews lists one bootcamp's reviews when mounted under
// /bootcamps/:bootcampId, otherwise runs the advanced-results query.
func (h *ReviewHandler) GetReviews(c *fiber.Ctx) error {
	if c.Params("bootcampId") != "" {
		bootcampID, err := objectID(c, "bootcampId")
		if err != nil {
			return err
		}
		reviews, err := h.reviews.ListBootcampReviews(c.UserContext(), bootcampID)
		if err != nil {
			return err
		}
		return c.JSON(common.List(reviews, len(reviews)))
	}

	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	result, err := h.reviews.ListReviews(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *ReviewHandler) GetReview(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.reviews.GetReview(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(review))
}

func (h *ReviewHandler) AddReview(c *fiber.Ctx) error {
	bootcampID, err := objectID(c, "bootcampId")
	if err != nil {
		return err
	}
	var req services.ReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.AddReview(c.UserContext(), middleware.CurrentUser(c), bootcampID, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(common.Data(review))
}

func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	var patch services.ReviewPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	review, err := h.reviews.UpdateReview(c.UserContext(), middleware.CurrentUser(c), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(review))
}

func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.DeleteReview(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.JSON(common.Data(common.Empty))
}
