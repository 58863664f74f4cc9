// Package httpapi is the REST surface: thin gin handlers over the domain
// services, plus the websocket subscription endpoint.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uniattend/internal/attendance"
	"uniattend/internal/auth"
	"uniattend/internal/config"
	"uniattend/internal/metrics"
	"uniattend/internal/observability"
	"uniattend/internal/realtime"
	"uniattend/internal/roster"
	"uniattend/internal/session"
	"uniattend/internal/store"
	"uniattend/internal/subjects"
	"uniattend/internal/users"
)

// Handler carries every dependency the routes need.
type Handler struct {
	cfg        config.App
	log        *zap.Logger
	auth       *auth.Service
	users      users.Store
	onboarding *users.Service
	subjects   *subjects.Service
	subjStore  subjects.Store
	sessions   *session.Service
	aggregator *attendance.Aggregator
	resolver   *roster.Resolver
	hub        realtime.Hub
	db         *store.DB
	redis      *store.Redis
}

// Deps bundles the constructor arguments.
type Deps struct {
	Cfg        config.App
	Log        *zap.Logger
	Auth       *auth.Service
	Users      users.Store
	Onboarding *users.Service
	Subjects   *subjects.Service
	SubjStore  subjects.Store
	Sessions   *session.Service
	Aggregator *attendance.Aggregator
	Resolver   *roster.Resolver
	Hub        realtime.Hub
	DB         *store.DB
	Redis      *store.Redis
}

// New creates the handler set.
func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{
		cfg: d.Cfg, log: d.Log, auth: d.Auth,
		users: d.Users, onboarding: d.Onboarding,
		subjects: d.Subjects, subjStore: d.SubjStore,
		sessions: d.Sessions, aggregator: d.Aggregator,
		resolver: d.Resolver, hub: d.Hub, db: d.DB, redis: d.Redis,
	}
}

// Router assembles the gin engine. extra middleware (rate limiting) is
// applied globally when given.
func (h *Handler) Router(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	for _, mw := range extra {
		r.Use(mw)
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	v1.POST("/auth/signup", h.SignUp)
	v1.POST("/auth/signin", h.SignIn)
	v1.POST("/auth/refresh", h.Refresh)
	v1.POST("/auth/signout", h.SignOut)
	v1.POST("/auth/reset", h.PasswordReset)
	v1.GET("/ws", h.Watch)

	authed := v1.Group("", auth.UserAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	authed.GET("/me", h.Me)
	authed.POST("/me/onboarding", h.Onboard)

	subs := authed.Group("/subjects", h.requireOnboarded())
	subs.GET("", h.ListSubjects)
	subs.GET("/:id/students/:studentID/history", h.StudentHistory)

	teach := subs.Group("", auth.RequireRole(users.RoleTeacher))
	teach.POST("", h.CreateSubject)
	teach.PATCH("/:id", h.RenameSubject)
	teach.DELETE("/:id", h.DeleteSubject)
	teach.GET("/:id/roster", h.Roster)
	teach.GET("/:id/sessions/:date", h.SessionView)
	teach.PUT("/:id/sessions/:date", h.SessionSave)
	teach.POST("/:id/sessions/:date/quick-absent", h.QuickAbsent)
	teach.GET("/:id/report", h.Report)
	teach.GET("/:id/report.xlsx", h.ReportFile)

	return r
}

// Healthz reports dependency reachability.
func (h *Handler) Healthz(c *gin.Context) {
	dbHealthy := h.db.Healthy(c.Request.Context())
	redisHealthy := h.redis.Healthy(c.Request.Context())
	status := http.StatusOK
	if h.cfg.StoreBackend == "memory" {
		dbHealthy = true
	}
	if h.cfg.RealtimeBackend == "memory" {
		redisHealthy = true
	}
	if !dbHealthy || !redisHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
}

// fail writes the error response; backend failures are reported, client
// mistakes are not.
func (h *Handler) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		observability.CaptureErr(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// currentUser loads the authenticated account.
func (h *Handler) currentUser(c *gin.Context) (*users.User, bool) {
	claims := auth.CurrentClaims(c)
	u, err := h.users.ByID(c.Request.Context(), claims.Subject)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return nil, false
	}
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return nil, false
	}
	return u, true
}

// requireOnboarded blocks dashboard routes until the one-time profile step
// is done.
func (h *Handler) requireOnboarded() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := h.currentUser(c)
		if !ok {
			c.Abort()
			return
		}
		if !u.Onboarded {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "complete onboarding first"})
			return
		}
		c.Set("user", u)
		c.Next()
	}
}

// userFromCtx returns the user cached by requireOnboarded.
func userFromCtx(c *gin.Context) *users.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(*users.User); ok {
			return u
		}
	}
	return nil
}
