package handlers

import (
	"errors"
	"net/http"
	"sweetholic/internal/db"
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"
	"sweetholic/internal/utils"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ListHandler struct{}

func NewListHandler() *ListHandler {
	return &ListHandler{}
}

type createListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	IsPublic    *bool  `json:"is_public"`
}

type updateListRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	IsPublic    *bool   `json:"is_public"`
}

type addListItemRequest struct {
	ItemOrder *int `json:"item_order"`
}

type reorderPair struct {
	PostID    uint `json:"post_id"`
	ItemOrder int  `json:"item_order"`
}

type reorderRequest struct {
	Items []reorderPair `json:"items"`
}

func validListTitle(title string) bool {
	return title != "" && utf8.RuneCountInString(title) <= 255
}

// fillListPostCounts 批量填充列表的帖子数量
func fillListPostCounts(lists []models.List) {
	if len(lists) == 0 {
		return
	}

	listIDs := make([]uint, len(lists))
	for i, l := range lists {
		listIDs[i] = l.ID
	}

	type countResult struct {
		ListID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.ListItem{}).
		Select("list_id, COUNT(*) as count").
		Where("list_id IN ?", listIDs).
		Group("list_id").
		Scan(&results)

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.ListID] = r.Count
	}

	for i := range lists {
		lists[i].PostCount = countMap[lists[i].ID]
	}
}

// Create handles POST /lists
func (h *ListHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	title := utils.CleanText(req.Title)
	if !validListTitle(title) {
		Error(c, http.StatusBadRequest, "Title is required and must be 255 characters or less")
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	list := models.List{
		UserID:      user.ID,
		Title:       title,
		Description: utils.CleanText(req.Description),
		CoverURL:    req.CoverURL,
		IsPublic:    isPublic,
	}
	if err := db.DB.Create(&list).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to create list")
		return
	}

	list.Owner = user.Public()
	c.JSON(http.StatusCreated, gin.H{"success": true, "list": list})
}

// Update handles PUT /lists/:id, partial like post updates
func (h *ListHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid list ID")
		return
	}

	var list models.List
	if err := db.DB.First(&list, id).Error; err != nil {
		Error(c, http.StatusNotFound, "List not found")
		return
	}
	if list.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	var req updateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := utils.CleanText(*req.Title)
		if !validListTitle(title) {
			Error(c, http.StatusBadRequest, "Title is required and must be 255 characters or less")
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = utils.CleanText(*req.Description)
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) == 0 {
		Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := db.DB.Model(&list).Updates(updates).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to update list")
		return
	}

	db.DB.First(&list, list.ID)
	list.Owner = user.Public()
	c.JSON(http.StatusOK, gin.H{"success": true, "list": list})
}

// Delete handles DELETE /lists/:id. Memberships go with the list, the
// posts themselves are untouched.
func (h *ListHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid list ID")
		return
	}

	var list models.List
	if err := db.DB.First(&list, id).Error; err != nil {
		Error(c, http.StatusNotFound, "List not found")
		return
	}
	if list.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", list.ID).Delete(&models.ListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&list).Error
	})
	if err != nil {
		Error(c, http.StatusInternalServerError, "Failed to delete list")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "List deleted"})
}

// loadListItems returns a list's membership ascending by item_order with
// the composed posts attached.
func loadListItems(listID uint) []models.ListItem {
	var items []models.ListItem
	db.DB.Preload("Post.User").
		Preload("Post.Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("photo_order ASC") }).
		Where("list_id = ?", listID).
		Order("item_order ASC").
		Find(&items)

	posts := make([]models.Post, len(items))
	for i, item := range items {
		posts[i] = item.Post
	}
	fillPostCounts(posts)
	attachOwners(posts)
	for i := range items {
		items[i].Post = posts[i]
	}
	return items
}

// Detail handles GET /lists/:id. Membership is always returned ascending
// by item_order; ties fall back to store retrieval order.
func (h *ListHandler) Detail(c *gin.Context) {
	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid list ID")
		return
	}

	var list models.List
	if err := db.DB.Preload("User").First(&list, id).Error; err != nil {
		Error(c, http.StatusNotFound, "List not found")
		return
	}

	user := CurrentUser(c)
	if !list.IsPublic && (user == nil || user.ID != list.UserID) {
		Error(c, http.StatusForbidden, "This list is private")
		return
	}

	items := loadListItems(list.ID)

	u := list.User
	list.Owner = u.Public()
	list.PostCount = len(items)

	c.JSON(http.StatusOK, gin.H{"success": true, "list": list, "items": items})
}

// ListByUser handles GET /lists/user/:username
func (h *ListHandler) ListByUser(c *gin.Context) {
	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	limit, offset := Pagination(c)
	user := CurrentUser(c)

	query := db.DB.Model(&models.List{}).Where("user_id = ?", target.ID)
	if user == nil || user.ID != target.ID {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	query.Count(&total)

	var lists []models.List
	query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&lists)

	fillListPostCounts(lists)
	for i := range lists {
		lists[i].Owner = target.Public()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"lists":   lists,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// AddPost handles POST /lists/:id/posts/:postId. The caller must own the
// list AND the post being curated; the two checks fail with distinct
// messages. Explicit item_order is taken verbatim, otherwise the item
// appends after the current max.
func (h *ListHandler) AddPost(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	listID := ParseID(c, "id")
	postID := ParseID(c, "postId")
	if listID == 0 || postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	var list models.List
	if err := db.DB.First(&list, listID).Error; err != nil {
		Error(c, http.StatusNotFound, "List not found")
		return
	}
	if list.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	var post models.Post
	if err := db.DB.Preload("User").First(&post, postID).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != user.ID {
		Error(c, http.StatusForbidden, "You can only add your own posts to your lists")
		return
	}

	var existing models.ListItem
	if err := db.DB.Where("list_id = ? AND post_id = ?", listID, postID).First(&existing).Error; err == nil {
		Error(c, http.StatusBadRequest, "Post is already in this list")
		return
	}

	var req addListItemRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var order int
	if req.ItemOrder != nil {
		// Verbatim, no collision check: duplicate orders are allowed and
		// tie-break is left to retrieval order.
		order = *req.ItemOrder
	} else {
		maxOrder := -1
		db.DB.Model(&models.ListItem{}).
			Where("list_id = ?", listID).
			Select("COALESCE(MAX(item_order), -1)").
			Scan(&maxOrder)
		order = maxOrder + 1
	}

	item := models.ListItem{
		ListID:    listID,
		PostID:    postID,
		ItemOrder: order,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to add post to list")
		return
	}

	posts := []models.Post{post}
	fillPostCounts(posts)
	attachOwners(posts)
	item.Post = posts[0]

	c.JSON(http.StatusCreated, gin.H{"success": true, "item": item})
}

// RemovePost handles DELETE /lists/:id/posts/:postId. Only list
// ownership is required here; the caller is pruning their own list.
func (h *ListHandler) RemovePost(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	listID := ParseID(c, "id")
	postID := ParseID(c, "postId")
	if listID == 0 || postID == 0 {
		Error(c, http.StatusBadRequest, "Invalid ID")
		return
	}

	var list models.List
	if err := db.DB.First(&list, listID).Error; err != nil {
		Error(c, http.StatusNotFound, "List not found")
		return
	}
	if list.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	result := db.DB.Where("list_id = ? AND post_id = ?", listID, postID).Delete(&models.ListItem{})
	if result.Error != nil {
		Error(c, http.StatusInternalServerError, "Failed to remove post from list")
		return
	}
	if result.RowsAffected == 0 {
		Error(c, http.StatusNotFound, "Post is not in this list")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post removed from list"})
}

// Reorder handles PUT /lists/:id/reorder: every pair applies or none
// does. The new order set is not required to be unique or contiguous.
func (h *ListHandler) Reorder(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	listID := ParseID(c, "id")
	if listID == 0 {
		Error(c, http.StatusBadRequest, "Invalid list ID")
		return
	}

	var list models.List
	if err := db.DB.First(&list, listID).Error; err != nil {
		Error(c, http.StatusNotFound, "List not found")
		return
	}
	if list.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		Error(c, http.StatusBadRequest, "Items must be a non-empty array of {post_id, item_order} pairs")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, pair := range req.Items {
			result := tx.Model(&models.ListItem{}).
				Where("list_id = ? AND post_id = ?", listID, pair.PostID).
				Update("item_order", pair.ItemOrder)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return invalidInput("Post is not in this list")
			}
		}
		return nil
	})
	if err != nil {
		var bad invalidInput
		if errors.As(err, &bad) {
			Error(c, http.StatusNotFound, string(bad))
			return
		}
		Error(c, http.StatusInternalServerError, "Failed to reorder list")
		return
	}

	items := loadListItems(listID)

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}
