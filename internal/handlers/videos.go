package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/service"
)

type VideoHandler struct {
	Videos  *service.VideoService
	Uploads Uploads
}

type videoForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// GetVideos lists published videos; query, sortBy, sortType and userId are optional.
func (h *VideoHandler) GetVideos(c echo.Context) error {
	owner, err := optionalID(c, "userId")
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)

	res, err := h.Videos.Search(c.Request().Context(), service.SearchInput{
		PageRequest: service.PageRequest{Page: page, Limit: limit},
		Query:       c.QueryParam("query"),
		SortBy:      c.QueryParam("sortBy"),
		SortType:    c.QueryParam("sortType"),
		UserID:      owner,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Videos fetched successfully")
}

func (h *VideoHandler) PublishVideo(c echo.Context) error {
	var req videoForm
	if err := bind(c, &req); err != nil {
		return err
	}
	staged, err := h.Uploads.stageAll(c, service.FieldVideoFile, service.FieldThumbnail)
	if err != nil {
		return err
	}

	video, err := h.Videos.Publish(c.Request().Context(), auth.PrincipalFrom(c), service.PublishInput{
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   staged[0],
		Thumbnail:   staged[1],
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, video, "Video published successfully")
}

func (h *VideoHandler) GetVideo(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	video, err := h.Videos.Get(c.Request().Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, video, "Video fetched successfully")
}

func (h *VideoHandler) UpdateVideo(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req videoForm
	if err := bind(c, &req); err != nil {
		return err
	}
	thumb, err := h.Uploads.stage(c, service.FieldThumbnail)
	if err != nil {
		return err
	}

	video, err := h.Videos.Update(c.Request().Context(), auth.PrincipalFrom(c), id, service.UpdateVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   thumb,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, video, "Video updated successfully")
}

func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Videos.Delete(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Video deleted successfully")
}

func (h *VideoHandler) TogglePublishStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	video, err := h.Videos.TogglePublish(c.Request().Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, video, "Publish status toggled successfully")
}
