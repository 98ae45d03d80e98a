package httpserver

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/videotube/internal/handlers"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/videotube/internal/middleware/logging"
)

type Deps struct {
	Identity *auth.Identity

	UserHandler       *handlers.UserHandler
	VideoHandler      *handlers.VideoHandler
	EngagementHandler *handlers.EngagementHandler
	PlaylistHandler   *handlers.PlaylistHandler
	PostHandler       *handlers.PostHandler
	HealthHandler     *handlers.HealthHandler
}

type Options struct {
	Logger         *slog.Logger
	CORSOrigins    []string
	MaxUploadMB    int
	AuthRatePerMin int
	CSRF           bool
	CookieSecure   bool
}

// New builds the echo instance with the shared middleware stack and routes.
func New(opts Options, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(opts.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowCredentials: true,
	}))
	if opts.MaxUploadMB > 0 {
		e.Use(middleware.BodyLimit(strconv.Itoa(opts.MaxUploadMB) + "M"))
	}
	if opts.CSRF {
		e.Use(csrf.Middleware(csrf.Config{
			SessionCookie: auth.AccessCookie,
			Secure:        opts.CookieSecure,
			SkipPaths:     []string{"/health/live", "/health/ready"},
		}))
	}

	Register(e, d, authLimiter(opts.AuthRatePerMin))
	return e
}

// authLimiter throttles credential endpoints per client ip. perMin <= 0
// disables it.
func authLimiter(perMin int) echo.MiddlewareFunc {
	if perMin <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMin) / 60),
		Burst:     perMin,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiter(store)
}

func Register(e *echo.Echo, d *Deps, limit echo.MiddlewareFunc) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)

	v1 := e.Group("/api/v1")
	required := d.Identity.Require
	optional := d.Identity.Optional

	users := v1.Group("/users")
	users.POST("/register", d.UserHandler.Register, limit)
	users.POST("/login", d.UserHandler.Login, limit)
	users.POST("/refresh-token", d.UserHandler.RefreshToken, limit)
	users.POST("/logout", d.UserHandler.Logout, required)
	users.POST("/change-password", d.UserHandler.ChangePassword, required)
	users.GET("/current-user", d.UserHandler.CurrentUser, required)
	users.PATCH("/update-account", d.UserHandler.UpdateAccount, required)
	users.PATCH("/avatar", d.UserHandler.UpdateAvatar, required)
	users.PATCH("/cover-image", d.UserHandler.UpdateCoverImage, required)
	users.GET("/c/:username", d.UserHandler.ChannelProfile, optional)

	videos := v1.Group("/videos")
	videos.GET("", d.VideoHandler.GetVideos)
	videos.POST("", d.VideoHandler.PublishVideo, required)
	videos.GET("/:id", d.VideoHandler.GetVideo, optional)
	videos.PATCH("/:id", d.VideoHandler.UpdateVideo, required)
	videos.DELETE("/:id", d.VideoHandler.DeleteVideo, required)
	videos.PATCH("/toggle/publish/:id", d.VideoHandler.TogglePublishStatus, required)

	likes := v1.Group("/likes", required)
	likes.POST("/video/:id", d.EngagementHandler.ToggleVideoLike)
	likes.POST("/comment/:id", d.EngagementHandler.ToggleCommentLike)
	likes.POST("/tweet/:id", d.EngagementHandler.ToggleTweetLike)
	likes.GET("/videos", d.EngagementHandler.LikedVideos)

	subs := v1.Group("/subscriptions")
	subs.POST("/:channelId", d.EngagementHandler.ToggleSubscription, required)
	subs.GET("/c/:channelId", d.EngagementHandler.ChannelSubscribers)
	subs.GET("/u/:subscriberId", d.EngagementHandler.SubscribedChannels)

	playlists := v1.Group("/playlists")
	playlists.POST("", d.PlaylistHandler.CreatePlaylist, required)
	playlists.GET("/user/:userId", d.PlaylistHandler.UserPlaylists)
	playlists.GET("/:id", d.PlaylistHandler.GetPlaylist)
	playlists.PATCH("/:id", d.PlaylistHandler.UpdatePlaylist, required)
	playlists.DELETE("/:id", d.PlaylistHandler.DeletePlaylist, required)
	playlists.POST("/:id/videos/:videoId", d.PlaylistHandler.AddVideo, required)
	playlists.DELETE("/:id/videos/:videoId", d.PlaylistHandler.RemoveVideo, required)
	playlists.PATCH("/add/:videoId/:playlistId", d.PlaylistHandler.AddVideo, required)
	playlists.PATCH("/remove/:videoId/:playlistId", d.PlaylistHandler.RemoveVideo, required)

	tweets := v1.Group("/tweets")
	tweets.POST("", d.PostHandler.CreateTweet, required)
	tweets.GET("/user/:userId", d.PostHandler.UserTweets, optional)
	tweets.PATCH("/:id", d.PostHandler.UpdateTweet, required)
	tweets.DELETE("/:id", d.PostHandler.DeleteTweet, required)

	comments := v1.Group("/comments")
	comments.GET("/:videoId", d.PostHandler.VideoComments, optional)
	comments.POST("/:videoId", d.PostHandler.AddComment, required)
	comments.PATCH("/c/:commentId", d.PostHandler.UpdateComment, required)
	comments.DELETE("/c/:commentId", d.PostHandler.DeleteComment, required)

	dashboard := v1.Group("/dashboard", required)
	dashboard.GET("/stats", d.EngagementHandler.ChannelStats)
	dashboard.GET("/videos", d.EngagementHandler.ChannelVideos)
}
