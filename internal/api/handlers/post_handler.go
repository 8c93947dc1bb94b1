package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/linkfeed/internal/service"
	"github.com/maheshrc27/linkfeed/internal/transfer"
)

const mediaField = "media"

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) ListFeed(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.ListFeed(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(posts)
}

func (h *PostHandler) ListOwnPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.ListOwnPosts(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(posts)
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	body, files, err := readPostBody(c)
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Unable to parse form")
	}

	post, err := h.s.CreatePost(c.Context(), userID, body.Content, files)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id, ok := postID(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Post ID is required")
	}

	body, files, err := readPostBody(c)
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Unable to parse form")
	}

	post, err := h.s.UpdatePost(c.Context(), id, userID, body, files)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(post)
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id, ok := postID(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Post ID is required")
	}

	if err := h.s.DeletePost(c.Context(), id, userID); err != nil {
		return errorResponse(c, err)
	}

	return message(c, fiber.StatusOK, "Post deleted successfully")
}

func (h *PostHandler) ToggleLike(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id, ok := postID(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Post ID is required")
	}

	post, err := h.s.ToggleLike(c.Context(), id, userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(post)
}

func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	id, ok := postID(c)
	if !ok {
		return message(c, fiber.StatusBadRequest, "Post ID is required")
	}

	var cc transfer.CommentCreation
	if err := c.BodyParser(&cc); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	post, err := h.s.AddComment(c.Context(), id, userID, cc.Content)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

type jsonPostBody struct {
	Content      string          `json:"content"`
	KeepMedia    json.RawMessage `json:"keepMedia"`
	DeletedMedia json.RawMessage `json:"deletedMedia"`
}

// readPostBody accepts multipart forms (with files), JSON and url-encoded
// bodies. An absent or unreadable keepMedia keeps every existing item.
func readPostBody(c *fiber.Ctx) (*transfer.PostUpdate, []*multipart.FileHeader, error) {
	pu := &transfer.PostUpdate{}

	var keep, deleted []string
	var keepOK bool

	switch {
	case isMultipart(c):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		pu.Content = first(form.Value["content"])
		keep, keepOK = formMediaList(form.Value["keepMedia"])
		deleted = formPaths(form.Value["deletedMedia"])
		pu.Removal = removal(keep, keepOK, deleted)
		return pu, form.File[mediaField], nil


	case strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON):
		var body jsonPostBody
		if len(c.Body()) > 0 {
			if err := json.Unmarshal(c.Body(), &body); err != nil {
				return nil, nil, err
			}
		}
		pu.Content = body.Content
		keep, keepOK = rawMediaList(body.KeepMedia)
		deleted, _ = rawMediaList(body.DeletedMedia)

	default:
		args := c.Request().PostArgs()
		pu.Content = string(args.Peek("content"))
		keep, keepOK = formMediaList(peekAll(args.PeekMulti("keepMedia")))
		deleted = formPaths(peekAll(args.PeekMulti("deletedMedia")))
	}

	pu.Removal = removal(keep, keepOK, deleted)
	return pu, nil, nil
}

func removal(keep []string, keepOK bool, deleted []string) transfer.MediaRemoval {
	return transfer.MediaRemoval{
		KeepAll:      !keepOK,
		KeepMedia:    keep,
		DeletedMedia: deleted,
	}
}

func rawMediaList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return parseMediaList([]byte(encoded))
	}
	return parseMediaList(raw)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func peekAll(values [][]byte) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}
