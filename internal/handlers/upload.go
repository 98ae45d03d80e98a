package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/assets"
)

// Uploads writes multipart files into the staging directory.
type Uploads struct {
	Dir string
}

// stage returns a zero Staged when field is absent. Presence rules belong to
// the services.
func (u Uploads) stage(c echo.Context, field string) (assets.Staged, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return assets.Staged{Field: field}, nil
		}
		return assets.Staged{}, apperr.Wrap(apperr.ErrValidation, "malformed "+field+" upload", err)
	}
	st, err := assets.Stage(u.Dir, field, fh)
	if err != nil {
		return assets.Staged{}, apperr.Wrap(apperr.ErrInternal, "stage "+field, err)
	}
	return st, nil
}

// stageAll stages every field or none of them.
func (u Uploads) stageAll(c echo.Context, fields ...string) ([]assets.Staged, error) {
	out := make([]assets.Staged, 0, len(fields))
	for _, f := range fields {
		st, err := u.stage(c, f)
		if err != nil {
			assets.Discard(out...)
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
