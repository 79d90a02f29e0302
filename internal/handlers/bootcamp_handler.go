package handlers

import (
	"net/http"
	"strconv"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/middleware"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BootcampHandler struct {
	bootcamps *services.BootcampService
	photos    *services.PhotoService
}

func NewBootcampHandler(bootcamps *services.BootcampService, photos *services.PhotoService) *BootcampHandler {
	return &BootcampHandler{bootcamps: bootcamps, photos: photos}
}

func (h *BootcampHandler) GetBootcamps(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	result, err := h.bootcamps.ListBootcamps(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *BootcampHandler) GetBootcamp(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.bootcamps.GetBootcamp(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(b))
}

func (h *BootcampHandler) CreateBootcamp(c *fiber.Ctx) error {
	var req services.BootcampRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	b, err := h.bootcamps.CreateBootcamp(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(common.Data(b))
}

func (h *BootcampHandler) UpdateBootcamp(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	var patch services.BootcampPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	b, err := h.bootcamps.UpdateBootcamp(c.UserContext(), middleware.CurrentUser(c), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(b))
}

func (h *BootcampHandler) DeleteBootcamp(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.bootcamps.DeleteBootcamp(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.JSON(common.Data(common.Empty))
}

// GetBootcampsInRadius handles /radius/:zipcode/:distance with distance in km.
func (h *BootcampHandler) GetBootcampsInRadius(c *fiber.Ctx) error {
	distance, err := strconv.ParseFloat(c.Params("distance"), 64)
	if err != nil {
		return common.BadRequest("Distance must be a number")
	}
	found, err := h.bootcamps.BootcampsInRadius(c.UserContext(), c.Params("zipcode"), distance)
	if err != nil {
		return err
	}
	return c.JSON(common.List(found, len(found)))
}

func (h *BootcampHandler) UploadPhoto(c *fiber.Ctx) error {
	id, err := objectID(c, "id")
	if err != nil {
		return err
	}
	// a missing file is reported by the service after the ownership check
	fileHeader, _ := c.FormFile("file")
	name, err := h.photos.UploadPhoto(c.UserContext(), middleware.CurrentUser(c), id, fileHeader)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(name))
}
