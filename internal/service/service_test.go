package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/videotube/internal/assets"
	"github.com/Skotchmaster/videotube/internal/authz"
	"github.com/Skotchmaster/videotube/internal/events"
	"github.com/Skotchmaster/videotube/internal/repo"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/testdb"
	"github.com/Skotchmaster/videotube/internal/toggle"
	"github.com/Skotchmaster/videotube/internal/tokens"
	"github.com/Skotchmaster/videotube/internal/views"
)

// fakeStore consumes staged files like the S3 store. Files whose name
// contains "fail" are rejected.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]bool
	deleted []string
}

func (f *fakeStore) Upload(_ context.Context, localPath string) (assets.Asset, error) {
	defer os.Remove(localPath)
	if _, err := os.Stat(localPath); err != nil {
		return assets.Asset{}, err
	}
	name := filepath.Base(localPath)
	if strings.Contains(name, "fail") {
		return assets.Asset{}, errors.New("remote rejected upload")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.test/" + name
	f.objects[url] = true
	return assets.Asset{URL: url, Duration: 42}, nil
}

func (f *fakeStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, url)
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (e *eventLog) Publish(_ context.Context, _, _ string, ev events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *eventLog) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	r         *repo.GormRepo
	store     *fakeStore
	events    *eventLog
	tokens    *tokens.Service
	users     *service.UserService
	videos    *service.VideoService
	engage    *service.EngagementService
	playlists *service.PlaylistService
	posts     *service.PostService
	dashboard *service.DashboardService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := repo.New(testdb.New(t), 0)
	store := &fakeStore{objects: map[string]bool{}}
	log := &eventLog{}
	users := repo.NewUsers(r)
	videos := repo.NewVideos(r)
	composer := views.NewComposer(r)
	orch := assets.NewOrchestrator(store, log, time.Second)
	tok := tokens.NewService(tokens.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, users)
	edges := repo.NewEdges(r)

	return &env{
		r:         r,
		store:     store,
		events:    log,
		tokens:    tok,
		users:     &service.UserService{Users: users, Tokens: tok, Assets: orch, Views: composer, Events: log},
		videos:    &service.VideoService{Videos: videos, Views: composer, Assets: orch, Events: log},
		engage:    &service.EngagementService{Toggle: toggle.New(edges, edges), Users: users, Views: composer, Events: log},
		playlists: &service.PlaylistService{Playlists: repo.NewPlaylists(r), Videos: videos, Users: users, Views: composer},
		posts:     &service.PostService{R: r, Users: users, Videos: videos, Views: composer},
		dashboard: &service.DashboardService{Views: composer},
	}
}

func stage(t *testing.T, name string) assets.Staged {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0o600))
	return assets.Staged{Path: path}
}

func (e *env) register(t *testing.T, username string) authz.Principal {
	t.Helper()
	u, err := e.users.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		FullName: strings.ToUpper(username),
		Password: "Secret1",
		Avatar:   stage(t, username+"-avatar.png"),
	})
	require.NoError(t, err)
	p, err := e.users.Principal(context.Background(), u.ID)
	require.NoError(t, err)
	return p
}

func (e *env) publish(t *testing.T, owner authz.Principal, title string) uuid.UUID {
	t.Helper()
	v, err := e.videos.Publish(context.Background(), owner, service.PublishInput{
		Title:       title,
		Description: "about " + title,
		VideoFile:   stage(t, uuid.NewString()+".mp4"),
		Thumbnail:   stage(t, uuid.NewString()+".png"),
	})
	require.NoError(t, err)
	return v.ID
}
