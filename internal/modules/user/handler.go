package user

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"vidtube/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// CookieConfig controls how the auth cookies are written.
type CookieConfig struct {
	Secure        bool
	SameSite      http.SameSite
	Path          string
	Domain        string
	AccessMaxAge  int
	RefreshMaxAge int
}

// Handler manages all HTTP interactions for accounts and sessions.
type Handler struct {
	service *Service
	cookies CookieConfig
}

func NewHandler(service *Service, cookies CookieConfig) *Handler {
	if cookies.Path == "" {
		cookies.Path = "/"
	}
	return &Handler{service: service, cookies: cookies}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	users := v1.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh-token", h.RefreshToken)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	users := protected.Group("/users")
	{
		users.POST("/logout", h.Logout)
		users.POST("/change-password", h.ChangePassword)
		users.GET("/me", h.GetMe)
		users.PATCH("/me", h.UpdateAccount)
		users.PATCH("/me/avatar", h.UpdateAvatar)
		users.PATCH("/me/cover-image", h.UpdateCoverImage)
	}
}

// Register creates a new account from a multipart form carrying the profile
// fields plus an avatar file (required) and cover image (optional).
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	// A missing avatar is the service's call to make: the duplicate-account
	// check has to run first so a conflict still answers 409.
	avatarPath, cleanupAvatar, _ := h.stageFile(c, "avatar")
	defer cleanupAvatar()

	coverPath, cleanupCover, _ := h.stageFile(c, "coverImage")
	defer cleanupCover()

	u, err := h.service.Register(c.Request.Context(), req, avatarPath, coverPath)
	if err != nil {
		h.respondServiceError(c, err, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": u}, "User registered successfully")
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req, deviceID(c))
	if err != nil {
		h.respondServiceError(c, err, "LOGIN_FAILED", "Failed to login")
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "User logged in successfully")
}

// RefreshToken rotates the session. The refresh token is read from the
// cookie first, falling back to the request body for non-cookie clients.
func (h *Handler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookieName)
	if err != nil || presented == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	result, err := h.service.Refresh(c.Request.Context(), presented, deviceID(c))
	if err != nil {
		h.respondServiceError(c, err, "REFRESH_FAILED", "Failed to refresh session")
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "Access token refreshed")
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, gin.H{}, "User logged out")
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), c.GetInt64("user_id"), req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusBadRequest, "INVALID_OLD_PASSWORD", "Old password is incorrect")
			return
		}
		h.respondServiceError(c, err, "PASSWORD_CHANGE_FAILED", "Failed to change password")
		return
	}

	response.Success(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

func (h *Handler) GetMe(c *gin.Context) {
	u, err := h.service.CurrentUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.respondServiceError(c, err, "FETCH_FAILED", "Failed to fetch current user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u}, "Current user fetched successfully")
}

func (h *Handler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	u, err := h.service.UpdateAccount(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.respondServiceError(c, err, "UPDATE_FAILED", "Failed to update account")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u}, "Account details updated successfully")
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	path, cleanup, err := h.stageFile(c, "avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Avatar file is required")
		return
	}
	defer cleanup()

	u, err := h.service.UpdateAvatar(c.Request.Context(), c.GetInt64("user_id"), path)
	if err != nil {
		h.respondServiceError(c, err, "UPDATE_FAILED", "Failed to update avatar")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u}, "Avatar updated successfully")
}

func (h *Handler) UpdateCoverImage(c *gin.Context) {
	path, cleanup, err := h.stageFile(c, "coverImage")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cover image file is required")
		return
	}
	defer cleanup()

	u, err := h.service.UpdateCoverImage(c.Request.Context(), c.GetInt64("user_id"), path)
	if err != nil {
		h.respondServiceError(c, err, "UPDATE_FAILED", "Failed to update cover image")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": u}, "Cover image updated successfully")
}

// respondServiceError maps service sentinel errors onto the error taxonomy.
func (h *Handler) respondServiceError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, ErrFieldsRequired), errors.Is(err, ErrAvatarRequired):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrUserExists):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrRefreshReused):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}

func (h *Handler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie(accessCookieName, accessToken, h.cookies.AccessMaxAge, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(refreshCookieName, refreshToken, h.cookies.RefreshMaxAge, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(h.cookies.SameSite)
	c.SetCookie(accessCookieName, "", -1, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(refreshCookieName, "", -1, h.cookies.Path, h.cookies.Domain, h.cookies.Secure, true)
}

// stageFile saves an uploaded form file to a temp path for the uploader.
// The cleanup func is safe to call even when no file was staged.
func (h *Handler) stageFile(c *gin.Context, field string) (string, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", func() {}, err
	}
	return h.stageMultipart(c, file)
}

func (h *Handler) stageMultipart(c *gin.Context, file *multipart.FileHeader) (string, func(), error) {
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	path := filepath.Join(os.TempDir(), name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", func() {}, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}

func deviceID(c *gin.Context) string {
	if id := c.GetHeader("X-Device-ID"); id != "" {
		return id
	}
	return DefaultDeviceID
}
