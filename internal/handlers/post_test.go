package handlers_test

import (
	"fmt"
	"net/http"
	"sweetholic/internal/db"
	"sweetholic/internal/models"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestCreatePostWithChildren(t *testing.T) {
	r := setupEnv(t)
	cookies := signup(t, r, "alice")

	w := doRequest(t, r, "POST", "/posts", gin.H{
		"caption":       "Best tiramisu in town",
		"location":      "Rome",
		"food_category": "dessert",
		"rating_type":   "5_star",
		"rating":        5,
		"photos": []gin.H{
			{"url": "https://img.example.com/a.jpg", "photo_order": 1},
			{"url": "https://img.example.com/b.jpg", "photo_order": 0, "rating": 4},
		},
		"food_items": []gin.H{
			{"name": "Tiramisu", "price": 6.5, "rating": 5},
			{"name": "Espresso"},
		},
	}, cookies)
	wantStatus(t, w, http.StatusCreated)

	resp := decode(t, w)
	post := resp["post"].(map[string]interface{})

	photos := post["photos"].([]interface{})
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	first := photos[0].(map[string]interface{})
	if first["url"] != "https://img.example.com/b.jpg" {
		t.Errorf("photos not ordered by photo_order: first is %v", first["url"])
	}

	items := post["food_items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 food items, got %d", len(items))
	}
	if items[0].(map[string]interface{})["name"] != "Tiramisu" {
		t.Errorf("food items not in positional order")
	}

	if post["photo_count"].(float64) != 2 {
		t.Errorf("expected photo_count 2, got %v", post["photo_count"])
	}
	owner := post["user"].(map[string]interface{})
	if owner["username"] != "alice" {
		t.Errorf("expected owner alice, got %v", owner["username"])
	}
	if _, hasEmail := owner["email"]; hasEmail {
		t.Errorf("owner profile must not expose email")
	}
}

func TestCreatePostAtomicRollback(t *testing.T) {
	r := setupEnv(t)
	cookies := signup(t, r, "alice")

	// 6 exceeds the 5_star scale: the whole aggregate must roll back
	w := doRequest(t, r, "POST", "/posts", gin.H{
		"caption":     "Half valid",
		"rating_type": "5_star",
		"food_items": []gin.H{
			{"name": "Cake", "rating": 4},
			{"name": "Pie", "rating": 6},
		},
	}, cookies)
	wantStatus(t, w, http.StatusBadRequest)

	var posts, items int64
	db.DB.Model(&models.Post{}).Count(&posts)
	db.DB.Model(&models.FoodItem{}).Count(&items)
	if posts != 0 || items != 0 {
		t.Errorf("expected zero persisted rows, got %d posts and %d food items", posts, items)
	}
}

func TestCreatePostValidation(t *testing.T) {
	r := setupEnv(t)
	cookies := signup(t, r, "alice")

	w := doRequest(t, r, "POST", "/posts", gin.H{"caption": "   "}, cookies)
	wantStatus(t, w, http.StatusBadRequest)
	wantMessage(t, w, "Caption")

	w = doRequest(t, r, "POST", "/posts", gin.H{"caption": "ok", "rating_type": "7_star"}, cookies)
	wantStatus(t, w, http.StatusBadRequest)
	wantMessage(t, w, "rating type")

	w = doRequest(t, r, "POST", "/posts", gin.H{"caption": "ok", "rating_type": "3_star", "rating": 4}, cookies)
	wantStatus(t, w, http.StatusBadRequest)

	// A photo rating without any scale on the post is rejected too
	w = doRequest(t, r, "POST", "/posts", gin.H{
		"caption": "ok",
		"photos":  []gin.H{{"url": "https://img.example.com/a.jpg", "rating": 2}},
	}, cookies)
	wantStatus(t, w, http.StatusBadRequest)
}

func TestUpdatePostPartial(t *testing.T) {
	r := setupEnv(t)
	cookies := signup(t, r, "alice")
	postID := createPost(t, r, cookies, gin.H{"caption": "Original", "location": "Paris"})

	w := doRequest(t, r, "PUT", fmt.Sprintf("/posts/%d", postID), gin.H{"location": "Lyon"}, cookies)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	post := resp["post"].(map[string]interface{})
	if post["caption"] != "Original" {
		t.Errorf("caption should be untouched, got %v", post["caption"])
	}
	if post["location"] != "Lyon" {
		t.Errorf("location should be updated, got %v", post["location"])
	}

	// Empty update is rejected, not silently accepted
	w = doRequest(t, r, "PUT", fmt.Sprintf("/posts/%d", postID), gin.H{}, cookies)
	wantStatus(t, w, http.StatusBadRequest)
	wantMessage(t, w, "No fields")

	// Touching rating re-validates the pair
	w = doRequest(t, r, "PUT", fmt.Sprintf("/posts/%d", postID), gin.H{"rating": 2}, cookies)
	wantStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, r, "PUT", fmt.Sprintf("/posts/%d", postID), gin.H{"rating_type": "10_star", "rating": 8}, cookies)
	wantStatus(t, w, http.StatusOK)
}

func TestUpdatePostOwnership(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")
	postID := createPost(t, r, alice, gin.H{"caption": "Mine"})

	w := doRequest(t, r, "PUT", fmt.Sprintf("/posts/%d", postID), gin.H{"caption": "Stolen"}, bob)
	wantStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/posts/%d", postID), nil, bob)
	wantStatus(t, w, http.StatusForbidden)

	// Unchanged
	w = doRequest(t, r, "GET", fmt.Sprintf("/posts/%d", postID), nil, nil)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["post"].(map[string]interface{})["caption"] != "Mine" {
		t.Errorf("post must be unchanged after denied mutation")
	}

	w = doRequest(t, r, "PUT", "/posts/9999", gin.H{"caption": "x"}, bob)
	wantStatus(t, w, http.StatusNotFound)
}

func TestDeletePostCascade(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")

	postID := createPost(t, r, alice, gin.H{
		"caption": "Doomed",
		"photos":  []gin.H{{"url": "https://img.example.com/a.jpg"}},
		"food_items": []gin.H{
			{"name": "Flan"},
		},
	})

	listID := createList(t, r, alice, "Favorites")
	w := doRequest(t, r, "POST", fmt.Sprintf("/lists/%d/posts/%d", listID, postID), nil, alice)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "POST", fmt.Sprintf("/reactions/%d", postID), gin.H{"reaction_type": "love"}, bob)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "POST", fmt.Sprintf("/comments/post/%d", postID), gin.H{"content": "looks great"}, bob)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "DELETE", fmt.Sprintf("/posts/%d", postID), nil, alice)
	wantStatus(t, w, http.StatusOK)

	counts := map[string]int64{}
	var n int64
	db.DB.Model(&models.Photo{}).Where("post_id = ?", postID).Count(&n)
	counts["photos"] = n
	db.DB.Model(&models.FoodItem{}).Where("post_id = ?", postID).Count(&n)
	counts["food_items"] = n
	db.DB.Model(&models.Reaction{}).Where("post_id = ?", postID).Count(&n)
	counts["reactions"] = n
	db.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n)
	counts["comments"] = n
	db.DB.Model(&models.ListItem{}).Where("post_id = ?", postID).Count(&n)
	counts["list_items"] = n
	for name, count := range counts {
		if count != 0 {
			t.Errorf("expected %s to be cascaded, found %d rows", name, count)
		}
	}

	// The list itself survives, now empty
	w = doRequest(t, r, "GET", fmt.Sprintf("/lists/%d", listID), nil, alice)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["list"].(map[string]interface{})["post_count"].(float64) != 0 {
		t.Errorf("list should be empty after post deletion")
	}
}

func TestFeedPaginationAndVisibility(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")

	createPost(t, r, alice, gin.H{"caption": "first"})
	time.Sleep(5 * time.Millisecond)
	createPost(t, r, alice, gin.H{"caption": "second"})
	time.Sleep(5 * time.Millisecond)
	hidden := createPost(t, r, alice, gin.H{"caption": "secret", "is_public": false})

	w := doRequest(t, r, "GET", "/posts/feed", nil, nil)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["total"].(float64) != 2 {
		t.Errorf("expected total 2, got %v", resp["total"])
	}
	posts := resp["posts"].([]interface{})
	if len(posts) != 2 {
		t.Fatalf("expected 2 public posts, got %d", len(posts))
	}
	if posts[0].(map[string]interface{})["caption"] != "second" {
		t.Errorf("feed should be newest-first")
	}

	w = doRequest(t, r, "GET", "/posts/feed?limit=1&offset=1", nil, nil)
	resp = decode(t, w)
	if resp["total"].(float64) != 2 || resp["limit"].(float64) != 1 || resp["offset"].(float64) != 1 {
		t.Errorf("pagination echo incorrect: %v", resp)
	}
	posts = resp["posts"].([]interface{})
	if len(posts) != 1 || posts[0].(map[string]interface{})["caption"] != "first" {
		t.Errorf("expected page with the older post")
	}

	// Garbage params fall back to the defaults
	w = doRequest(t, r, "GET", "/posts/feed?limit=abc&offset=-5", nil, nil)
	resp = decode(t, w)
	if resp["limit"].(float64) != 20 || resp["offset"].(float64) != 0 {
		t.Errorf("bad params should resolve to defaults, got limit=%v offset=%v", resp["limit"], resp["offset"])
	}
	w = doRequest(t, r, "GET", "/posts/feed?limit=500", nil, nil)
	resp = decode(t, w)
	if resp["limit"].(float64) != 100 {
		t.Errorf("limit should be capped at 100, got %v", resp["limit"])
	}

	// Private post: anonymous 403, owner 200
	w = doRequest(t, r, "GET", fmt.Sprintf("/posts/%d", hidden), nil, nil)
	wantStatus(t, w, http.StatusForbidden)
	w = doRequest(t, r, "GET", fmt.Sprintf("/posts/%d", hidden), nil, alice)
	wantStatus(t, w, http.StatusOK)

	// Owner listing includes the private post, everyone else's view doesn't
	w = doRequest(t, r, "GET", "/posts/user/alice", nil, alice)
	resp = decode(t, w)
	if resp["total"].(float64) != 3 {
		t.Errorf("owner should see all 3 posts, got %v", resp["total"])
	}
	w = doRequest(t, r, "GET", "/posts/user/alice", nil, nil)
	resp = decode(t, w)
	if resp["total"].(float64) != 2 {
		t.Errorf("anonymous should see 2 posts, got %v", resp["total"])
	}
}

func TestFeedCountsStayFresh(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")
	postID := createPost(t, r, alice, gin.H{"caption": "brownie"})

	// Prime the cached first page
	w := doRequest(t, r, "GET", "/posts/feed", nil, nil)
	wantStatus(t, w, http.StatusOK)

	w = doRequest(t, r, "POST", fmt.Sprintf("/comments/post/%d", postID), gin.H{"content": "yum"}, bob)
	wantStatus(t, w, http.StatusCreated)
	w = doRequest(t, r, "POST", fmt.Sprintf("/reactions/%d", postID), gin.H{"reaction_type": "love"}, bob)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "GET", "/posts/feed", nil, nil)
	wantStatus(t, w, http.StatusOK)
	post := decode(t, w)["posts"].([]interface{})[0].(map[string]interface{})
	if post["comment_count"].(float64) != 1 {
		t.Errorf("comment_count stale after new comment: got %v", post["comment_count"])
	}
	if post["reaction_count"].(float64) != 1 {
		t.Errorf("reaction_count stale after new reaction: got %v", post["reaction_count"])
	}

	// Removal must refresh too
	w = doRequest(t, r, "GET", "/posts/feed", nil, nil)
	wantStatus(t, w, http.StatusOK)
	w = doRequest(t, r, "DELETE", fmt.Sprintf("/reactions/%d/love", postID), nil, bob)
	wantStatus(t, w, http.StatusOK)
	w = doRequest(t, r, "GET", "/posts/feed", nil, nil)
	post = decode(t, w)["posts"].([]interface{})[0].(map[string]interface{})
	if post["reaction_count"].(float64) != 0 {
		t.Errorf("reaction_count stale after removal: got %v", post["reaction_count"])
	}
}

func TestFollowingFeedFilter(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")
	carol := signup(t, r, "carol")

	createPost(t, r, bob, gin.H{"caption": "bob post"})
	time.Sleep(5 * time.Millisecond)
	createPost(t, r, carol, gin.H{"caption": "carol post"})

	w := doRequest(t, r, "POST", "/follows/bob", nil, alice)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "GET", "/posts/feed?following=true", nil, alice)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	posts := resp["posts"].([]interface{})
	if len(posts) != 1 || posts[0].(map[string]interface{})["caption"] != "bob post" {
		t.Errorf("following feed should only contain followed users' posts: %v", posts)
	}

	w = doRequest(t, r, "GET", "/posts/feed?following=true", nil, nil)
	wantStatus(t, w, http.StatusUnauthorized)
}
