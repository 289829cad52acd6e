package handlers

import (
	"net/http"
	"sweetholic/internal/db"
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"
	"sweetholic/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxCommentLength = 1000

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type commentRequest struct {
	Content string `json:"content"`
}

// validateComment applies the shared content rules: required after trim,
// length measured on the raw input.
func validateComment(raw string) (string, string) {
	content := utils.CleanText(raw)
	if content == "" {
		return "", "Comment content is required"
	}
	if len([]rune(raw)) > maxCommentLength {
		return "", "Comment must be 1000 characters or less"
	}
	return content, ""
}

func attachAuthors(comments []models.Comment) {
	for i := range comments {
		u := comments[i].User
		comments[i].Author = u.Public()
	}
}

// Create handles POST /comments/post/:id
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	postID := ParseID(c, "id")
	if postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	content, msg := validateComment(req.Content)
	if msg != "" {
		Error(c, http.StatusBadRequest, msg)
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  user.ID,
		Content: content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to create comment")
		return
	}

	utils.GetCache().Delete(feedCacheKey)

	comment.Author = user.Public()
	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}

// Update handles PUT /comments/:id. Only the author may edit, never the
// post owner.
func (h *CommentHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		Error(c, http.StatusNotFound, "Comment not found")
		return
	}
	if comment.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	content, msg := validateComment(req.Content)
	if msg != "" {
		Error(c, http.StatusBadRequest, msg)
		return
	}

	if err := db.DB.Model(&comment).Update("content", content).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to update comment")
		return
	}

	comment.Content = content
	comment.Author = user.Public()
	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment})
}

// Delete handles DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		Error(c, http.StatusNotFound, "Comment not found")
		return
	}
	if comment.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	utils.GetCache().Delete(feedCacheKey)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}

// ListByPost handles GET /comments/post/:id, oldest-first for thread
// display.
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID := ParseID(c, "id")
	if postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}

	limit, offset := Pagination(c)

	var total int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total)

	var comments []models.Comment
	db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments)

	attachAuthors(comments)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"comments": comments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// ListByUser handles GET /comments/user/:username, newest-first for the
// personal activity view.
func (h *CommentHandler) ListByUser(c *gin.Context) {
	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	limit, offset := Pagination(c)

	var total int64
	db.DB.Model(&models.Comment{}).Where("user_id = ?", target.ID).Count(&total)

	var comments []models.Comment
	db.DB.Preload("User").
		Where("user_id = ?", target.ID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments)

	attachAuthors(comments)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"comments": comments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}
