package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkfeed/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(id, 10, 64)
	return userID
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": msg,
	})
}

// errorResponse maps service errors onto status codes.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case service.IsValidationError(err):
		return message(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return message(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return message(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotPostOwner):
		return message(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrUserNotFound):
		return message(c, fiber.StatusNotFound, err.Error())
	default:
		return message(c, fiber.StatusInternalServerError, err.Error())
	}
}

func postID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

type mediaRef struct {
	Path string `json:"path"`
}

// parseMediaList reads a list of media paths given either as a JSON array of
// strings or of objects carrying a path.
func parseMediaList(raw []byte) ([]string, bool) {
	var paths []string
	if err := json.Unmarshal(raw, &paths); err == nil {
		if paths == nil {
			return nil, false
		}
		return paths, true
	}

	var refs []mediaRef
	if err := json.Unmarshal(raw, &refs); err != nil || refs == nil {
		return nil, false
	}

	paths = make([]string, 0, len(refs))
	for _, ref := range refs {
		paths = append(paths, ref.Path)
	}
	return paths, true
}

// formMediaList reads keepMedia style values: a single JSON encoded list or
// the field repeated once per path. A single value that is not JSON is
// treated as absent.
func formMediaList(values []string) ([]string, bool) {
	switch len(values) {
	case 0:
		return nil, false
	case 1:
		return parseMediaList([]byte(strings.TrimSpace(values[0])))
	default:
		return values, true
	}
}

// formPaths reads deletedMedia style values, where a lone plain value is a
// single path.
func formPaths(values []string) []string {
	if paths, ok := formMediaList(values); ok {
		return paths
	}

	var paths []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			paths = append(paths, v)
		}
	}
	return paths
}
