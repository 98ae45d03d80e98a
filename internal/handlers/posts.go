package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/service"
)

// PostHandler serves tweets and video comments.
type PostHandler struct {
	Posts *service.PostService
}

type contentForm struct {
	Content string `json:"content" form:"content"`
}

func (h *PostHandler) CreateTweet(c echo.Context) error {
	var req contentForm
	if err := bind(c, &req); err != nil {
		return err
	}
	tw, err := h.Posts.CreateTweet(c.Request().Context(), auth.PrincipalFrom(c), req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, tw, "Tweet created successfully")
}

func (h *PostHandler) UserTweets(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	res, err := h.Posts.UserTweets(c.Request().Context(), id, auth.PrincipalFrom(c), service.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Tweets fetched successfully")
}

func (h *PostHandler) UpdateTweet(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req contentForm
	if err := bind(c, &req); err != nil {
		return err
	}
	tw, err := h.Posts.UpdateTweet(c.Request().Context(), auth.PrincipalFrom(c), id, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tw, "Tweet updated successfully")
}

func (h *PostHandler) DeleteTweet(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Posts.DeleteTweet(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Tweet deleted successfully")
}

func (h *PostHandler) VideoComments(c echo.Context) error {
	id, err := idParam(c, "videoId")
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	res, err := h.Posts.VideoComments(c.Request().Context(), id, auth.PrincipalFrom(c), service.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Comments fetched successfully")
}

func (h *PostHandler) AddComment(c echo.Context) error {
	id, err := idParam(c, "videoId")
	if err != nil {
		return err
	}
	var req contentForm
	if err := bind(c, &req); err != nil {
		return err
	}
	cm, err := h.Posts.AddComment(c.Request().Context(), auth.PrincipalFrom(c), id, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, cm, "Comment added successfully")
}

func (h *PostHandler) UpdateComment(c echo.Context) error {
	id, err := idParam(c, "commentId")
	if err != nil {
		return err
	}
	var req contentForm
	if err := bind(c, &req); err != nil {
		return err
	}
	cm, err := h.Posts.UpdateComment(c.Request().Context(), auth.PrincipalFrom(c), id, req.Content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cm, "Comment updated successfully")
}

func (h *PostHandler) DeleteComment(c echo.Context) error {
	id, err := idParam(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.Posts.DeleteComment(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Comment deleted successfully")
}
