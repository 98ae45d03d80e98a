package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/toggle"
)

type EngagementHandler struct {
	Engagement *service.EngagementService
	Dashboard  *service.DashboardService
}

type toggleFunc func(ctx context.Context, p authz.Principal, target uuid.UUID) (toggle.State, error)

func (h *EngagementHandler) toggle(c echo.Context, param, flag, what string, fn toggleFunc) error {
	id, err := idParam(c, param)
	if err != nil {
		return err
	}
	state, err := fn(c.Request().Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"state": state, flag: state == toggle.Added}, what+" "+string(state))
}

func (h *EngagementHandler) ToggleVideoLike(c echo.Context) error {
	return h.toggle(c, "id", "isLiked", "Video like", h.Engagement.ToggleVideoLike)
}

func (h *EngagementHandler) ToggleCommentLike(c echo.Context) error {
	return h.toggle(c, "id", "isLiked", "Comment like", h.Engagement.ToggleCommentLike)
}

func (h *EngagementHandler) ToggleTweetLike(c echo.Context) error {
	return h.toggle(c, "id", "isLiked", "Tweet like", h.Engagement.ToggleTweetLike)
}

func (h *EngagementHandler) ToggleSubscription(c echo.Context) error {
	return h.toggle(c, "channelId", "isSubscribed", "Subscription", h.Engagement.ToggleSubscription)
}

func (h *EngagementHandler) LikedVideos(c echo.Context) error {
	page, limit := pageQuery(c)
	res, err := h.Engagement.LikedVideos(c.Request().Context(), auth.PrincipalFrom(c), service.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Liked videos fetched successfully")
}

func (h *EngagementHandler) ChannelSubscribers(c echo.Context) error {
	id, err := idParam(c, "channelId")
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	res, err := h.Engagement.ChannelSubscribers(c.Request().Context(), id, service.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Subscribers fetched successfully")
}

func (h *EngagementHandler) SubscribedChannels(c echo.Context) error {
	id, err := idParam(c, "subscriberId")
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	res, err := h.Engagement.SubscribedChannels(c.Request().Context(), id, service.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Subscribed channels fetched successfully")
}

func (h *EngagementHandler) ChannelStats(c echo.Context) error {
	stats, err := h.Dashboard.Stats(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats, "Channel stats fetched successfully")
}

func (h *EngagementHandler) ChannelVideos(c echo.Context) error {
	page, limit := pageQuery(c)
	res, err := h.Dashboard.Videos(c.Request().Context(), auth.PrincipalFrom(c), service.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, res, "Channel videos fetched successfully")
}
