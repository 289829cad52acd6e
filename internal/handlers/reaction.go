package handlers

import (
	"net/http"
	"sweetholic/internal/db"
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"
	"sweetholic/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct{}

func NewReactionHandler() *ReactionHandler {
	return &ReactionHandler{}
}

type addReactionRequest struct {
	Type string `json:"reaction_type"`
}

// Add handles POST /reactions/:postId. One row per (post, user, type);
// reacting twice with the same type is a conflict. The unique index on
// the table backstops the pre-check under concurrency.
func (h *ReactionHandler) Add(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	postID := ParseID(c, "postId")
	if postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req addReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidReactionType(req.Type) {
		Error(c, http.StatusBadRequest, "Invalid reaction type")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}

	var existing models.Reaction
	if err := db.DB.Where("post_id = ? AND user_id = ? AND reaction_type = ?",
		postID, user.ID, req.Type).First(&existing).Error; err == nil {
		Error(c, http.StatusBadRequest, "You have already reacted with this type")
		return
	}

	reaction := models.Reaction{
		PostID: postID,
		UserID: user.ID,
		Type:   req.Type,
	}
	if err := db.DB.Create(&reaction).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to add reaction")
		return
	}
	utils.GetCache().Delete(feedCacheKey)

	c.JSON(http.StatusCreated, gin.H{"success": true, "reaction": reaction})
}

// Remove handles DELETE /reactions/:postId/:type
func (h *ReactionHandler) Remove(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	postID := ParseID(c, "postId")
	if postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	reactionType := c.Param("type")
	if !models.ValidReactionType(reactionType) {
		Error(c, http.StatusBadRequest, "Invalid reaction type")
		return
	}

	result := db.DB.Where("post_id = ? AND user_id = ? AND reaction_type = ?",
		postID, user.ID, reactionType).Delete(&models.Reaction{})
	if result.Error != nil {
		Error(c, http.StatusInternalServerError, "Failed to remove reaction")
		return
	}
	if result.RowsAffected == 0 {
		Error(c, http.StatusNotFound, "Reaction not found")
		return
	}
	utils.GetCache().Delete(feedCacheKey)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reaction removed"})
}

// Get handles GET /reactions/:postId: total, per-type counts (only types
// actually used appear) and the caller's own types. An anonymous caller
// degrades to an empty user_reactions array, never an error.
func (h *ReactionHandler) Get(c *gin.Context) {
	postID := ParseID(c, "postId")
	if postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}

	type countResult struct {
		ReactionType string
		Count        int64
	}
	var results []countResult
	db.DB.Model(&models.Reaction{}).
		Select("reaction_type, COUNT(*) as count").
		Where("post_id = ?", postID).
		Group("reaction_type").
		Scan(&results)

	var total int64
	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.ReactionType] = r.Count
		total += r.Count
	}

	userReactions := []string{}
	if user := CurrentUser(c); user != nil {
		db.DB.Model(&models.Reaction{}).
			Where("post_id = ? AND user_id = ?", postID, user.ID).
			Order("created_at ASC").
			Pluck("reaction_type", &userReactions)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"total":          total,
		"counts":         counts,
		"user_reactions": userReactions,
	})
}

type reactionUser struct {
	models.Profile
	ReactedAt time.Time `json:"reacted_at"`
}

// Users handles GET /reactions/:postId/users/:type: the most-recent-first
// page of users holding that exact reaction type.
func (h *ReactionHandler) Users(c *gin.Context) {
	postID := ParseID(c, "postId")
	if postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	reactionType := c.Param("type")
	if !models.ValidReactionType(reactionType) {
		Error(c, http.StatusBadRequest, "Invalid reaction type")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}

	limit, offset := Pagination(c)

	var count int64
	db.DB.Model(&models.Reaction{}).
		Where("post_id = ? AND reaction_type = ?", postID, reactionType).
		Count(&count)

	var reactions []models.Reaction
	db.DB.Preload("User").
		Where("post_id = ? AND reaction_type = ?", postID, reactionType).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reactions)

	users := make([]reactionUser, len(reactions))
	for i, r := range reactions {
		u := r.User
		users[i] = reactionUser{
			Profile:   *u.Public(),
			ReactedAt: r.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"count":   count,
		"limit":   limit,
		"offset":  offset,
	})
}
