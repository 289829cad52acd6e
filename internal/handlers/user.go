package handlers

import (
	"net/http"
	"sweetholic/internal/db"
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"
	"sweetholic/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// Profile handles GET /users/:username: the public profile with derived
// counts. Counts are derived per request, never stored.
func (h *UserHandler) Profile(c *gin.Context) {
	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	user := CurrentUser(c)

	postQuery := db.DB.Model(&models.Post{}).Where("user_id = ?", target.ID)
	if user == nil || user.ID != target.ID {
		postQuery = postQuery.Where("is_public = ?", true)
	}

	var postCount, followerCount, followingCount int64
	postQuery.Count(&postCount)
	db.DB.Model(&models.Follow{}).Where("following_id = ?", target.ID).Count(&followerCount)
	db.DB.Model(&models.Follow{}).Where("follower_id = ?", target.ID).Count(&followingCount)

	isFollowing := false
	if user != nil && user.ID != target.ID {
		var follow models.Follow
		if err := db.DB.Where("follower_id = ? AND following_id = ?", user.ID, target.ID).
			First(&follow).Error; err == nil {
			isFollowing = true
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"user":            target.Public(),
		"post_count":      postCount,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"is_following":    isFollowing,
	})
}

// UpdateMe handles PUT /users/me, partial profile update
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = utils.CleanText(*req.DisplayName)
	}
	if req.Bio != nil {
		updates["bio"] = utils.CleanText(*req.Bio)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	db.DB.First(user, user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Public()})
}
