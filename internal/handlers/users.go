package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/tokens"
)

type UserHandler struct {
	Users        *service.UserService
	Uploads      Uploads
	CookieSecure bool
}

func (h *UserHandler) setSession(c echo.Context, pair tokens.Pair) {
	c.SetCookie(CreateCookie(auth.AccessCookie, pair.AccessToken, "/", pair.AccessExp, h.CookieSecure))
	c.SetCookie(CreateCookie(auth.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp, h.CookieSecure))
}

func (h *UserHandler) Register(c echo.Context) error {
	var req struct {
		FullName string `json:"fullName" form:"fullName"`
		Email    string `json:"email" form:"email"`
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	staged, err := h.Uploads.stageAll(c, service.FieldAvatar, service.FieldCoverImage)
	if err != nil {
		return err
	}

	user, err := h.Users.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Avatar:   staged[0],
		Cover:    staged[1],
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, user, "User registered successfully")
}

func (h *UserHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}

	user, pair, err := h.Users.Login(c.Request().Context(), login, req.Password)
	if err != nil {
		return err
	}
	h.setSession(c, pair)
	return respond(c, http.StatusOK, echo.Map{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully")
}

func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.Users.Logout(c.Request().Context(), auth.PrincipalFrom(c)); err != nil {
		return err
	}
	c.SetCookie(DeleteCookie(auth.AccessCookie, "/", h.CookieSecure))
	c.SetCookie(DeleteCookie(auth.RefreshCookie, "/", h.CookieSecure))
	return respond(c, http.StatusOK, echo.Map{}, "User logged out")
}

// RefreshToken reads the refresh token from its cookie, falling back to the body.
func (h *UserHandler) RefreshToken(c echo.Context) error {
	var presented string
	if ck, err := c.Cookie(auth.RefreshCookie); err == nil {
		presented = ck.Value
	}
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken" form:"refreshToken"`
		}
		if err := bind(c, &req); err != nil {
			return err
		}
		presented = req.RefreshToken
	}

	pair, err := h.Users.Refresh(c.Request().Context(), presented)
	if err != nil {
		return err
	}
	h.setSession(c, pair)
	return respond(c, http.StatusOK, echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed")
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req struct {
		OldPassword string `json:"oldPassword" form:"oldPassword"`
		NewPassword string `json:"newPassword" form:"newPassword"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.Users.ChangePassword(c.Request().Context(), auth.PrincipalFrom(c), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{}, "Password changed successfully")
}

func (h *UserHandler) CurrentUser(c echo.Context) error {
	user, err := h.Users.CurrentUser(c.Request().Context(), auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "User fetched successfully")
}

func (h *UserHandler) UpdateAccount(c echo.Context) error {
	var req struct {
		FullName string `json:"fullName" form:"fullName"`
		Email    string `json:"email" form:"email"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.Users.UpdateAccount(c.Request().Context(), auth.PrincipalFrom(c), req.FullName, req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	staged, err := h.Uploads.stage(c, service.FieldAvatar)
	if err != nil {
		return err
	}
	user, err := h.Users.UpdateAvatar(c.Request().Context(), auth.PrincipalFrom(c), staged)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Avatar updated successfully")
}

func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	staged, err := h.Uploads.stage(c, service.FieldCoverImage)
	if err != nil {
		return err
	}
	user, err := h.Users.UpdateCoverImage(c.Request().Context(), auth.PrincipalFrom(c), staged)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Cover image updated successfully")
}

func (h *UserHandler) ChannelProfile(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return apperr.Validation("username is missing")
	}
	profile, err := h.Users.ChannelProfile(c.Request().Context(), username, auth.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "User channel fetched successfully")
}
