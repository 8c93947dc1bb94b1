package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkfeed/internal/service"
	"github.com/maheshrc27/linkfeed/internal/transfer"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, err := h.s.GetUserInfo(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pu transfer.ProfileUpdate
	if err := c.BodyParser(&pu); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.s.UpdateName(c.Context(), userID, pu.Name)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(user)
}

func (h *UserHandler) UploadProfilePhoto(c *fiber.Ctx) error {
	userID := GetUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		return message(c, fiber.StatusBadRequest, "No image file provided")
	}

	user, err := h.s.UploadProfilePhoto(c.Context(), userID, file)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Profile photo updated",
		"profilePhoto": user.ProfilePhoto,
	})
}
