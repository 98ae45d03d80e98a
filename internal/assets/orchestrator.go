package assets

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/logging"
)

const DefaultTimeout = 60 * time.Second

// Orchestrator sequences asset-store calls around a document mutation so a
// failed step never leaves a document pointing at a missing asset.
type Orchestrator struct {
	Store   Store
	Events  events.Publisher
	Timeout time.Duration
}

func NewOrchestrator(store Store, pub events.Publisher, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{Store: store, Events: pub, Timeout: timeout}
}

// Uploaded maps a staged field name to its stored asset.
type Uploaded map[string]Asset

// CreateWithAssets uploads the staged files in order, then runs create. A
// failed upload aborts before create runs; a failed create deletes what was
// uploaded. Staged files are gone from disk when it returns.
func (o *Orchestrator) CreateWithAssets(ctx context.Context, staged []Staged, create func(ctx context.Context, up Uploaded) error) (Uploaded, error) {
	for _, s := range staged {
		if s.Path == "" {
			Discard(staged...)
			return nil, apperr.Validation(s.Field + " file is required")
		}
	}

	up := make(Uploaded, len(staged))
	urls := make([]string, 0, len(staged))
	for i, s := range staged {
		a, err := o.upload(ctx, s)
		if err != nil {
			Discard(staged[i+1:]...)
			o.compensate(ctx, urls)
			return nil, err
		}
		up[s.Field] = a
		urls = append(urls, a.URL)
	}

	if err := create(ctx, up); err != nil {
		o.compensate(ctx, urls)
		return nil, err
	}
	return up, nil
}

// ReplaceAsset uploads the new file, points the document at it, and only then
// removes the previous asset. Failing to remove the old one is logged only.
func (o *Orchestrator) ReplaceAsset(ctx context.Context, staged Staged, previous string, update func(ctx context.Context, a Asset) error) (Asset, error) {
	l := logging.FromContext(ctx).With("svc", "assets.replace", "field", staged.Field)

	if staged.Path == "" {
		return Asset{}, apperr.Validation(staged.Field + " file is required")
	}
	a, err := o.upload(ctx, staged)
	if err != nil {
		return Asset{}, err
	}
	if err := update(ctx, a); err != nil {
		o.compensate(ctx, []string{a.URL})
		return Asset{}, err
	}
	if previous != "" {
		if err := o.remove(context.WithoutCancel(ctx), previous); err != nil {
			l.Warn("asset_cleanup_failed", "url", previous, "error", err)
		}
	}
	return a, nil
}

// DeleteWithAssets deletes every asset and then the document. Any asset
// failure stops before the document is touched.
func (o *Orchestrator) DeleteWithAssets(ctx context.Context, urls []string, remove func(ctx context.Context) error) error {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := o.remove(ctx, u); err != nil {
			return err
		}
	}
	return remove(ctx)
}

func (o *Orchestrator) upload(ctx context.Context, s Staged) (Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	a, err := o.Store.Upload(ctx, s.Path)
	if err != nil {
		return Asset{}, o.classify(ctx, err, "error while uploading "+s.Field)
	}
	return a, nil
}

func (o *Orchestrator) remove(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	if err := o.Store.Delete(ctx, url); err != nil {
		return o.classify(ctx, err, "error while deleting asset")
	}
	return nil
}

func (o *Orchestrator) classify(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.ErrTransient, msg+": timed out", err)
	}
	return apperr.Wrap(apperr.ErrUploadFailed, msg, err)
}

// compensate deletes assets whose document was never written. Assets that
// cannot be deleted are reported as orphaned for later reconciliation.
func (o *Orchestrator) compensate(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	l := logging.FromContext(ctx).With("svc", "assets.compensate")
	ctx = context.WithoutCancel(ctx)
	for _, u := range urls {
		if err := o.remove(ctx, u); err != nil {
			l.Error("asset_orphaned", "url", u, "error", err)
			events.Emit(ctx, o.Events, events.TopicAssets, u, "asset_orphaned", map[string]any{
				"url":    u,
				"reason": err.Error(),
			})
		}
	}
}
