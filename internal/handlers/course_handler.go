package handlers

import (
	"net/http"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/middleware"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// GetCourses lists one bootcamp's courses when mounted under
// /bootcamps/:bootcampId, otherwise runs the advanced-results query.
func (h *CourseHandler) GetCourses(c *fiber.Ctx) error {
	if c.Params("bootcampId") != "" {
		bootcampID, err := objectID(c, "bootcampId")
		if err != nil {
			return err
		}
		courses, err := h.courses.ListBootcampCourses(c.UserContext(), bootcampID)
		if err != nil {
			return err
		}
		return c.JSON(common.List(courses, len(courses)))
	}

	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	result, err := h.courses.ListCourses(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	course, err := h.courses.GetCourse(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(course))
}

func (h *CourseHandler) AddCourse(c *fiber.Ctx) error {
	bootcampID, err := objectID(c, "bootcampId")
	if err != nil {
		return err
	}
	var req services.CourseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	course, err := h.courses.AddCourse(c.UserContext(), middleware.CurrentUser(c), bootcampID, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(common.Data(course))
}

func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	var patch services.CoursePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	course, err := h.courses.UpdateCourse(c.UserContext(), middleware.CurrentUser(c), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(course))
}

func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.courses.DeleteCourse(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.JSON(common.Data(common.Empty))
}
