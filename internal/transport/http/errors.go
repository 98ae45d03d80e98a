package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/handlers"
	"github.com/Skotchmaster/videotube/internal/logging"
)

// ErrorHandler renders every error as the response envelope. Only the public
// message of an apperr reaches the client; causes are logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := apperr.Status(err), apperr.Message(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = httpMessage(he)
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, handlers.Response{StatusCode: status, Message: msg})
}

func httpMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		if he.Code < http.StatusInternalServerError {
			return m.Error()
		}
	case nil:
	default:
		if he.Code < http.StatusInternalServerError {
			return fmt.Sprint(m)
		}
	}
	return http.StatusText(he.Code)
}
