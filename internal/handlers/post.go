package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sweetholic/internal/db"
	"sweetholic/internal/middleware"
	"sweetholic/internal/models"
	"sweetholic/internal/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const feedCacheKey = "posts:feed:first"

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// invalidInput marks validation failures detected inside a transaction so
// the boundary can answer 400 instead of 500 after the rollback.
type invalidInput string

func (e invalidInput) Error() string { return string(e) }

type photoInput struct {
	URL         string `json:"url"`
	PhotoOrder  *int   `json:"photo_order"`
	Description string `json:"description"`
	Rating      *int   `json:"rating"`
	IsLandscape bool   `json:"is_landscape"`
}

type foodItemInput struct {
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	Rating    *int     `json:"rating"`
	ItemOrder *int     `json:"item_order"`
}

type createPostRequest struct {
	Caption      string          `json:"caption"`
	Location     string          `json:"location"`
	FoodCategory string          `json:"food_category"`
	RatingType   string          `json:"rating_type"`
	Rating       *int            `json:"rating"`
	IsPublic     *bool           `json:"is_public"`
	Photos       []photoInput    `json:"photos"`
	FoodItems    []foodItemInput `json:"food_items"`
}

type updatePostRequest struct {
	Caption      *string `json:"caption"`
	Location     *string `json:"location"`
	FoodCategory *string `json:"food_category"`
	RatingType   *string `json:"rating_type"`
	Rating       *int    `json:"rating"`
	IsPublic     *bool   `json:"is_public"`
}

// ratingInScale checks a rating against the active scale. A nil rating is
// always fine; a present rating needs a known scale and must sit in
// [1, scale max].
func ratingInScale(rating *int, ratingType string) bool {
	if rating == nil {
		return true
	}
	max := models.ScaleMax(ratingType)
	return max > 0 && *rating >= 1 && *rating <= max
}

// fillPostCounts 批量填充帖子的派生计数（照片/回应/评论）
func fillPostCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	collect := func(model interface{}) map[uint]int {
		var results []countResult
		db.DB.Model(model).
			Select("post_id, COUNT(*) as count").
			Where("post_id IN ?", postIDs).
			Group("post_id").
			Scan(&results)
		m := make(map[uint]int, len(results))
		for _, r := range results {
			m[r.PostID] = r.Count
		}
		return m
	}

	photoCounts := collect(&models.Photo{})
	reactionCounts := collect(&models.Reaction{})
	commentCounts := collect(&models.Comment{})

	for i := range posts {
		posts[i].PhotoCount = photoCounts[posts[i].ID]
		posts[i].ReactionCount = reactionCounts[posts[i].ID]
		posts[i].CommentCount = commentCounts[posts[i].ID]
	}
}

// attachOwners projects each preloaded User into its public profile
func attachOwners(posts []models.Post) {
	for i := range posts {
		u := posts[i].User
		posts[i].Owner = u.Public()
	}
}

func loadPostWithChildren(id uint) (*models.Post, error) {
	var post models.Post
	err := db.DB.Preload("User").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("photo_order ASC") }).
		Preload("FoodItems", func(tx *gorm.DB) *gorm.DB { return tx.Order("item_order ASC") }).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Create handles POST /posts: the post row plus its photos and food items
// are written in one transaction. Any rating outside the active scale
// fails the whole request with nothing persisted.
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	caption := utils.CleanText(req.Caption)
	if caption == "" {
		Error(c, http.StatusBadRequest, "Caption is required")
		return
	}
	if req.RatingType != "" && !models.ValidRatingType(req.RatingType) {
		Error(c, http.StatusBadRequest, "Invalid rating type")
		return
	}
	if req.Rating != nil && !ratingInScale(req.Rating, req.RatingType) {
		Error(c, http.StatusBadRequest, "Rating is out of range for the rating type")
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post := models.Post{
		UserID:       user.ID,
		Caption:      caption,
		Location:     req.Location,
		FoodCategory: req.FoodCategory,
		RatingType:   req.RatingType,
		Rating:       req.Rating,
		IsPublic:     isPublic,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		for i, p := range req.Photos {
			if p.URL == "" {
				return invalidInput("Photo URL is required")
			}
			// 照片评分必须落在帖子选定的评分尺度内，越界时整体回滚
			if !ratingInScale(p.Rating, req.RatingType) {
				return invalidInput("Photo rating is out of range for the rating type")
			}
			order := i
			if p.PhotoOrder != nil {
				order = *p.PhotoOrder
			}
			photo := models.Photo{
				PostID:      post.ID,
				URL:         p.URL,
				PhotoOrder:  order,
				Description: utils.CleanText(p.Description),
				Rating:      p.Rating,
				IsLandscape: p.IsLandscape,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
		}

		for i, f := range req.FoodItems {
			name := strings.TrimSpace(f.Name)
			if name == "" {
				return invalidInput("Food item name is required")
			}
			if !ratingInScale(f.Rating, req.RatingType) {
				return invalidInput("Food item rating is out of range for the rating type")
			}
			order := i
			if f.ItemOrder != nil {
				order = *f.ItemOrder
			}
			item := models.FoodItem{
				PostID:    post.ID,
				Name:      name,
				Price:     f.Price,
				Rating:    f.Rating,
				ItemOrder: order,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		var bad invalidInput
		if errors.As(err, &bad) {
			Error(c, http.StatusBadRequest, string(bad))
			return
		}
		Error(c, http.StatusInternalServerError, "Failed to create post")
		return
	}

	utils.GetCache().Delete(feedCacheKey)

	created, err := loadPostWithChildren(post.ID)
	if err != nil {
		Error(c, http.StatusInternalServerError, "Failed to load post")
		return
	}
	posts := []models.Post{*created}
	fillPostCounts(posts)
	attachOwners(posts)

	c.JSON(http.StatusCreated, gin.H{"success": true, "post": posts[0]})
}

// Detail handles GET /posts/:id
func (h *PostHandler) Detail(c *gin.Context) {
	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := loadPostWithChildren(id)
	if err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}

	user := CurrentUser(c)
	if !post.IsPublic && (user == nil || user.ID != post.UserID) {
		Error(c, http.StatusForbidden, "This post is private")
		return
	}

	posts := []models.Post{*post}
	fillPostCounts(posts)
	attachOwners(posts)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"post":         posts[0],
		"caption_html": utils.RenderMarkdown(posts[0].Caption),
	})
}

// Feed handles GET /posts/feed: public posts newest-first. With
// ?following=true only posts from followed users are returned, which
// needs an authenticated caller.
func (h *PostHandler) Feed(c *gin.Context) {
	limit, offset := Pagination(c)
	user := CurrentUser(c)
	followingOnly := c.Query("following") == "true"

	if followingOnly && user == nil {
		Error(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	// 首页默认一页走本地缓存，帖子/评论/回应变动时主动失效
	cacheable := !followingOnly && limit == defaultLimit && offset == 0
	if cacheable {
		if cached := utils.GetCache().Get(feedCacheKey); cached != nil {
			if hData, ok := cached.(gin.H); ok {
				c.JSON(http.StatusOK, hData)
				return
			}
		}
	}

	query := db.DB.Model(&models.Post{}).Where("is_public = ?", true)
	if followingOnly {
		query = query.Where("user_id IN (?)",
			db.DB.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", user.ID))
	}

	var total int64
	query.Count(&total)

	var posts []models.Post
	query.Preload("User").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("photo_order ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts)

	fillPostCounts(posts)
	attachOwners(posts)

	resp := gin.H{
		"success": true,
		"posts":   posts,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	}
	if cacheable {
		utils.GetCache().Set(feedCacheKey, resp, 1*time.Minute)
	}
	c.JSON(http.StatusOK, resp)
}

// ListByUser handles GET /posts/user/:username. Owners see their private
// posts; everyone else only the public ones.
func (h *PostHandler) ListByUser(c *gin.Context) {
	var target models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&target).Error; err != nil {
		Error(c, http.StatusNotFound, "User not found")
		return
	}

	limit, offset := Pagination(c)
	user := CurrentUser(c)

	query := db.DB.Model(&models.Post{}).Where("user_id = ?", target.ID)
	if user == nil || user.ID != target.ID {
		query = query.Where("is_public = ?", true)
	}

	var total int64
	query.Count(&total)

	var posts []models.Post
	query.Preload("User").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("photo_order ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts)

	fillPostCounts(posts)
	attachOwners(posts)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"posts":   posts,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// Update handles PUT /posts/:id as a partial update: absent fields stay
// untouched, an empty update is rejected.
func (h *PostHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Caption != nil {
		caption := utils.CleanText(*req.Caption)
		if caption == "" {
			Error(c, http.StatusBadRequest, "Caption is required")
			return
		}
		updates["caption"] = caption
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.FoodCategory != nil {
		updates["food_category"] = *req.FoodCategory
	}
	if req.RatingType != nil {
		if *req.RatingType != "" && !models.ValidRatingType(*req.RatingType) {
			Error(c, http.StatusBadRequest, "Invalid rating type")
			return
		}
		updates["rating_type"] = *req.RatingType
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if len(updates) == 0 {
		Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	// Re-check the rating/scale pair whenever either side moves.
	if req.Rating != nil || req.RatingType != nil {
		newType := post.RatingType
		if req.RatingType != nil {
			newType = *req.RatingType
		}
		newRating := post.Rating
		if req.Rating != nil {
			newRating = req.Rating
		}
		if !ratingInScale(newRating, newType) {
			Error(c, http.StatusBadRequest, "Rating is out of range for the rating type")
			return
		}
	}

	if err := db.DB.Model(&post).Updates(updates).Error; err != nil {
		Error(c, http.StatusInternalServerError, "Failed to update post")
		return
	}

	utils.GetCache().Delete(feedCacheKey)

	updated, err := loadPostWithChildren(post.ID)
	if err != nil {
		Error(c, http.StatusInternalServerError, "Failed to load post")
		return
	}
	posts := []models.Post{*updated}
	fillPostCounts(posts)
	attachOwners(posts)

	c.JSON(http.StatusOK, gin.H{"success": true, "post": posts[0]})
}

// Delete handles DELETE /posts/:id. The cascade is explicit and
// transactional: photos, food items, reactions, comments and every list
// membership of the post go with it.
func (h *PostHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	id := ParseID(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		Error(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.UserID != user.ID {
		Error(c, http.StatusForbidden, "Not authorized")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&models.Reaction{},
			&models.Comment{},
			&models.ListItem{},
			&models.Photo{},
			&models.FoodItem{},
		}
		for _, child := range children {
			if err := tx.Where("post_id = ?", post.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		Error(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	utils.GetCache().Delete(feedCacheKey)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted"})
}
