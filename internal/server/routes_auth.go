package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"steward-cli/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) LoginHandler(c *gin.Context) {
	var req loginRequest
	if !bindBody(c, &req) {
		return
	}

	u, hash, err := s.store.UserByUsername(c.Request.Context(), req.Username)
	if err != nil || !checkPassword(hash, req.Password) {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "incorrect username or password"})
		return
	}

	token, err := newAccessToken(u.Username, time.Now())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) ProfileHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		abortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, model.Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	})
}

func (s *Server) LogoutHandler(c *gin.Context) {
	c.JSON(http.StatusOK, ack("logged out"))
}
