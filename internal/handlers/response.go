package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/util"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c echo.Context, code int, data any, msg string) error {
	return c.JSON(code, Response{
		StatusCode: code,
		Data:       data,
		Message:    msg,
		Success:    code < http.StatusBadRequest,
	})
}

func CreateCookie(name, value, path string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// DeleteCookie expires name on the client.
func DeleteCookie(name, path string, secure bool) *http.Cookie {
	ck := CreateCookie(name, "", path, time.Unix(0, 0), secure)
	ck.MaxAge = -1
	return ck
}

func idParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// optionalID parses a query value, treating an empty string as absent.
func optionalID(c echo.Context, name string) (uuid.UUID, error) {
	v := c.QueryParam(name)
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

func pageQuery(c echo.Context) (page, limit int) {
	return util.ParseIntDefault(c.QueryParam("page"), 1), util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Wrap(apperr.ErrValidation, "malformed request body", err)
	}
	return nil
}
