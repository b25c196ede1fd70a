package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"steward-cli/internal/model"
)

// Server is the HTTP surface over a Store.
type Server struct {
	store *Store
}

func NewServer(store *Store) *Server { return &Server{store: store} }

// GenerateRoutes wires the route table. All admin operations are POST with
// a JSON body; the front end this API mocks drives everything through
// request bodies, never the query string.
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(cors.New(corsConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "steward admin API is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "steward-admin-api"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", s.LoginHandler)
		auth.GET("/profile", s.authRequired(), s.ProfileHandler)
		auth.POST("/logout", s.authRequired(), s.LogoutHandler)
	}

	users := r.Group("/api/users")
	{
		users.POST("", s.ListUsersHandler)
		users.POST("/detail", s.UserDetailHandler)
		users.POST("/create", s.CreateUserHandler)
		users.POST("/update", s.UpdateUserHandler)
		users.POST("/delete", s.DeleteUserHandler)
		users.POST("/bulk-delete", s.BulkDeleteUsersHandler)
		users.POST("/invite", s.InviteUserHandler)
		users.POST("/activate", s.ActivateUserHandler)
		users.POST("/suspend", s.SuspendUserHandler)
		users.POST("/stats", s.UserStatsHandler)
	}

	tasks := r.Group("/api/tasks")
	{
		tasks.POST("/", s.ListTasksHandler)
		tasks.POST("/detail", s.TaskDetailHandler)
		tasks.POST("/create", s.CreateTaskHandler)
		tasks.POST("/update", s.UpdateTaskHandler)
		tasks.POST("/delete", s.DeleteTaskHandler)
		tasks.POST("/bulk-delete", s.BulkDeleteTasksHandler)
		tasks.POST("/status", s.TaskStatusHandler)
		tasks.POST("/assign", s.AssignTaskHandler)
		tasks.POST("/import", s.ImportTasksHandler)
		tasks.POST("/export", s.ExportTasksHandler)
		tasks.POST("/stats", s.TaskStatsHandler)
		tasks.POST("/dashboard", s.DashboardHandler)
	}

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.GenerateRoutes()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("admin API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		slog.Info("admin API stopped")
		return nil
	}
}

// bindBody decodes the JSON body, replying 400 on failure.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "missing request body"})
		return false
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return false
	}
	return true
}

// bindOptionalBody is bindBody for endpoints that also accept no body at
// all (stats, export, dashboard).
func bindOptionalBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return false
	}
	return true
}

// abortError maps store errors onto the API's {"detail": ...} error shape.
func abortError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": err.Error()})
}

func abortInvalid(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": msg})
}

func ack(message string) model.Ack {
	return model.Ack{Code: http.StatusOK, Message: message, Success: true}
}
