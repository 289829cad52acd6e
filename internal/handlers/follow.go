package handlers

import (
	"net/http"
	"sweetholic/internal/db"
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct{}

func NewFollowHandler() *FollowHandler {
	return &FollowHandler{}
}

// Follow handles POST /follows/:username
func (h *FollowHandler) Follow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	if target.ID == user.ID {
		Error(c, http.StatusBadRequest, "You cannot follow yourself")
		return
	}

	var existing models.Follow
	if err := db.DB.Where("follower_id = ? AND following_id = ?", user.ID, target.ID).
		First(&existing).Error; err == nil {
		Error(c, http.StatusBadRequest, "Already following this user")
		return
	}

	follow := models.Follow{
		FollowerID:  user.ID,
		FollowingID: target.ID,
	}
	if err := db.DB.Create(&follow).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to follow user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Followed successfully"})
}

// Unfollow handles DELETE /follows/:username
func (h *FollowHandler) Unfollow(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	result := db.DB.Where("follower_id = ? AND following_id = ?", user.ID, target.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		Error(c, http.StatusInternalServerError, "Failed to unfollow user")
		return
	}
	if result.RowsAffected == 0 {
		Error(c, http.StatusNotFound, "You are not following this user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Unfollowed successfully"})
}

// Followers handles GET /follows/:username/followers, newest edge first
func (h *FollowHandler) Followers(c *gin.Context) {
	h.listEdges(c, "following_id", "follower_id", "followers")
}

// Following handles GET /follows/:username/following
func (h *FollowHandler) Following(c *gin.Context) {
	h.listEdges(c, "follower_id", "following_id", "following")
}

func (h *FollowHandler) listEdges(c *gin.Context, matchColumn, selectColumn, key string) {
	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	limit, offset := Pagination(c)

	var total int64
	db.DB.Model(&models.Follow{}).Where(matchColumn+" = ?", target.ID).Count(&total)

	var users []models.User
	db.DB.Joins("JOIN follows ON follows."+selectColumn+" = users.id").
		Where("follows."+matchColumn+" = ?", target.ID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users)

	profiles := make([]*models.Profile, len(users))
	for i := range users {
		profiles[i] = users[i].Public()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		key:       profiles,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
