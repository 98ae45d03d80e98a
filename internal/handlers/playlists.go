package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/service"
)

type PlaylistHandler struct {
	Playlists *service.PlaylistService
}

type playlistForm struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func (h *PlaylistHandler) CreatePlaylist(c echo.Context) error {
	var req playlistForm
	if err := bind(c, &req); err != nil {
		return err
	}
	pl, err := h.Playlists.Create(c.Request().Context(), auth.PrincipalFrom(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, pl, "Playlist created successfully")
}

func (h *PlaylistHandler) UserPlaylists(c echo.Context) error {
	id, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	lists, err := h.Playlists.UserPlaylists(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, lists, "User playlists fetched successfully")
}

func (h *PlaylistHandler) GetPlaylist(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	pl, err := h.Playlists.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pl, "Playlist fetched successfully")
}

func (h *PlaylistHandler) UpdatePlaylist(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req playlistForm
	if err := bind(c, &req); err != nil {
		return err
	}
	pl, err := h.Playlists.Update(c.Request().Context(), auth.PrincipalFrom(c), id, req.Name, req.Description)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pl, "Playlist updated successfully")
}

func (h *PlaylistHandler) DeletePlaylist(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Playlists.Delete(c.Request().Context(), auth.PrincipalFrom(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Playlist deleted successfully")
}

// AddVideo serves both /:id/videos/:videoId and /add/:videoId/:playlistId.
func (h *PlaylistHandler) AddVideo(c echo.Context) error {
	pid, vid, err := membershipParams(c)
	if err != nil {
		return err
	}
	pl, err := h.Playlists.AddVideo(c.Request().Context(), auth.PrincipalFrom(c), pid, vid)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pl, "Video added to playlist")
}

func (h *PlaylistHandler) RemoveVideo(c echo.Context) error {
	pid, vid, err := membershipParams(c)
	if err != nil {
		return err
	}
	pl, err := h.Playlists.RemoveVideo(c.Request().Context(), auth.PrincipalFrom(c), pid, vid)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pl, "Video removed from playlist")
}

func membershipParams(c echo.Context) (playlistID, videoID uuid.UUID, err error) {
	name := "id"
	if c.Param("playlistId") != "" {
		name = "playlistId"
	}
	if playlistID, err = idParam(c, name); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if videoID, err = idParam(c, "videoId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return playlistID, videoID, nil
}
