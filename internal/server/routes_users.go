package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"steward-cli/internal/model"
)

type listUsersRequest struct {
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Search   string           `json:"search"`
	Status   model.StringList `json:"status"`
	Role     model.StringList `json:"role"`
	// Pointers distinguish an absent sort key (server default applies)
	// from an explicitly empty one (no sort).
	SortBy    *string `json:"sort_by"`
	SortOrder *string `json:"sort_order"`
}

type userDataRequest struct {
	UserID   string          `json:"user_id"`
	UserData model.UserPatch `json:"user_data"`
}

type userIDRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) ListUsersHandler(c *gin.Context) {
	var req listUsersRequest
	if !bindOptionalBody(c, &req) {
		return
	}

	q := model.UserListQuery{
		Page:      req.Page,
		PageSize:  req.PageSize,
		Search:    req.Search,
		Status:    req.Status,
		Role:      req.Role,
		SortBy:    model.DefaultSortBy,
		SortOrder: model.DefaultSortOrder,
	}
	if req.SortBy != nil {
		q.SortBy = *req.SortBy
	}
	if req.SortOrder != nil {
		q.SortOrder = *req.SortOrder
	}

	users, total, err := s.store.ListUsers(c.Request.Context(), q)
	if err != nil {
		abortError(c, err)
		return
	}
	page, size := clampPage(req.Page, req.PageSize)
	c.JSON(http.StatusOK, model.Page[model.User]{
		Code:     http.StatusOK,
		Message:  "success",
		Success:  true,
		Data:     users,
		Total:    total,
		Page:     page,
		PageSize: size,
	})
}

func (s *Server) UserDetailHandler(c *gin.Context) {
	var req userIDRequest
	if !bindBody(c, &req) {
		return
	}
	u, err := s.store.GetUser(c.Request.Context(), req.UserID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) CreateUserHandler(c *gin.Context) {
	var req userDataRequest
	if !bindBody(c, &req) {
		return
	}

	var u model.User
	req.UserData.Apply(&u)
	if u.Status == "" {
		u.Status = model.UserStatusActive
	}
	if u.Role == "" {
		u.Role = model.RoleCashier
	}
	if err := model.ValidateUser(u); err != nil {
		abortInvalid(c, err.Error())
		return
	}

	u.ID = uuid.NewString()
	password := ""
	if req.UserData.Password != nil {
		password = *req.UserData.Password
	}
	hash, err := hashPassword(password)
	if err != nil {
		abortError(c, err)
		return
	}
	created, err := s.store.CreateUser(c.Request.Context(), u, hash)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (s *Server) UpdateUserHandler(c *gin.Context) {
	var req userDataRequest
	if !bindBody(c, &req) {
		return
	}
	var probe model.User
	req.UserData.Apply(&probe)
	if err := model.ValidateUser(probe); err != nil {
		abortInvalid(c, err.Error())
		return
	}
	updated, err := s.store.UpdateUser(c.Request.Context(), req.UserID, req.UserData)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteUserHandler(c *gin.Context) {
	var req userIDRequest
	if !bindBody(c, &req) {
		return
	}
	if err := s.store.DeleteUser(c.Request.Context(), req.UserID); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack("user deleted"))
}

func (s *Server) BulkDeleteUsersHandler(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !bindBody(c, &req) {
		return
	}
	deleted, failed := s.store.DeleteUsers(c.Request.Context(), req.IDs)
	if failed == nil {
		failed = []string{}
	}
	c.JSON(http.StatusOK, model.BulkResult{
		Code:         http.StatusOK,
		Message:      fmt.Sprintf("bulk delete finished: %d users deleted", deleted),
		Success:      true,
		DeletedCount: deleted,
		FailedCount:  len(failed),
		FailedIDs:    failed,
	})
}

func (s *Server) InviteUserHandler(c *gin.Context) {
	var req struct {
		Email string         `json:"email"`
		Role  model.UserRole `json:"role"`
	}
	if !bindBody(c, &req) {
		return
	}
	if req.Email == "" {
		abortInvalid(c, "email is required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleCashier
	}
	if !req.Role.Valid() {
		abortInvalid(c, fmt.Sprintf("unknown user role: %s", req.Role))
		return
	}

	local, _, _ := strings.Cut(req.Email, "@")
	u := model.User{
		ID:        uuid.NewString(),
		FirstName: "Invited",
		LastName:  "User",
		Username:  local,
		Email:     req.Email,
		Status:    model.UserStatusInvited,
		Role:      req.Role,
	}
	hash, err := hashPassword("temp_password_123")
	if err != nil {
		abortError(c, err)
		return
	}
	if _, err := s.store.CreateUser(c.Request.Context(), u, hash); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.InviteResult{
		Code:         http.StatusOK,
		Message:      "invite sent",
		Success:      true,
		InvitedUsers: []string{req.Email},
	})
}

func (s *Server) ActivateUserHandler(c *gin.Context) {
	var req userIDRequest
	if !bindBody(c, &req) {
		return
	}
	if err := s.store.SetUserStatus(c.Request.Context(), req.UserID, model.UserStatusActive); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack("user activated"))
}

func (s *Server) SuspendUserHandler(c *gin.Context) {
	var req userIDRequest
	if !bindBody(c, &req) {
		return
	}
	if err := s.store.SetUserStatus(c.Request.Context(), req.UserID, model.UserStatusSuspended); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack("user suspended"))
}

func (s *Server) UserStatsHandler(c *gin.Context) {
	stats, err := s.store.UserStats(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
