package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestFollowLifecycle(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	signup(t, r, "bob")

	w := doRequest(t, r, "POST", "/follows/bob", nil, alice)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "POST", "/follows/bob", nil, alice)
	wantStatus(t, w, http.StatusBadRequest)
	wantMessage(t, w, "Already following")

	w = doRequest(t, r, "POST", "/follows/alice", nil, alice)
	wantStatus(t, w, http.StatusBadRequest)
	wantMessage(t, w, "yourself")

	w = doRequest(t, r, "POST", "/follows/nobody", nil, alice)
	wantStatus(t, w, http.StatusNotFound)

	w = doRequest(t, r, "DELETE", "/follows/bob", nil, alice)
	wantStatus(t, w, http.StatusOK)

	w = doRequest(t, r, "DELETE", "/follows/bob", nil, alice)
	wantStatus(t, w, http.StatusNotFound)
	wantMessage(t, w, "not following")
}

func TestFollowListings(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")
	carol := signup(t, r, "carol")

	w := doRequest(t, r, "POST", "/follows/alice", nil, bob)
	wantStatus(t, w, http.StatusCreated)
	time.Sleep(5 * time.Millisecond)
	w = doRequest(t, r, "POST", "/follows/alice", nil, carol)
	wantStatus(t, w, http.StatusCreated)
	w = doRequest(t, r, "POST", "/follows/bob", nil, alice)
	wantStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "GET", "/follows/alice/followers", nil, nil)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["total"].(float64) != 2 {
		t.Errorf("alice should have 2 followers, got %v", resp["total"])
	}
	followers := resp["followers"].([]interface{})
	if followers[0].(map[string]interface{})["username"] != "carol" {
		t.Errorf("newest follower should come first: %v", followers)
	}

	w = doRequest(t, r, "GET", "/follows/alice/following", nil, nil)
	resp = decode(t, w)
	following := resp["following"].([]interface{})
	if len(following) != 1 || following[0].(map[string]interface{})["username"] != "bob" {
		t.Errorf("alice should follow only bob: %v", following)
	}

	w = doRequest(t, r, "GET", "/follows/nobody/followers", nil, nil)
	wantStatus(t, w, http.StatusNotFound)
}

func TestUserProfileCounts(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")

	createPost(t, r, alice, gin.H{"caption": "public one"})
	createPost(t, r, alice, gin.H{"caption": "hidden one", "is_public": false})

	w := doRequest(t, r, "POST", "/follows/alice", nil, bob)
	wantStatus(t, w, http.StatusCreated)

	// Bob's view: only public posts counted, is_following set
	w = doRequest(t, r, "GET", "/users/alice", nil, bob)
	wantStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["post_count"].(float64) != 1 {
		t.Errorf("non-owner post_count should be 1, got %v", resp["post_count"])
	}
	if resp["follower_count"].(float64) != 1 || resp["following_count"].(float64) != 0 {
		t.Errorf("wrong follow counts: %v", resp)
	}
	if resp["is_following"] != true {
		t.Errorf("bob follows alice, is_following should be true")
	}
	profile := resp["user"].(map[string]interface{})
	if _, hasEmail := profile["email"]; hasEmail {
		t.Errorf("profile must not expose email")
	}

	// Owner's view counts private posts too
	w = doRequest(t, r, "GET", "/users/alice", nil, alice)
	resp = decode(t, w)
	if resp["post_count"].(float64) != 2 {
		t.Errorf("owner post_count should be 2, got %v", resp["post_count"])
	}

	w = doRequest(t, r, "GET", "/users/alice", nil, nil)
	resp = decode(t, w)
	if resp["is_following"] != false {
		t.Errorf("anonymous is_following should be false")
	}
}

func TestUpdateProfile(t *testing.T) {
	r := setupEnv(t)
	alice := signup(t, r, "alice")

	w := doRequest(t, r, "PUT", "/users/me", gin.H{"display_name": "Alice A.", "bio": "dessert hunter"}, alice)
	wantStatus(t, w, http.StatusOK)
	user := decode(t, w)["user"].(map[string]interface{})
	if user["display_name"] != "Alice A." || user["bio"] != "dessert hunter" {
		t.Errorf("profile not updated: %v", user)
	}

	w = doRequest(t, r, "PUT", "/users/me", gin.H{}, alice)
	wantStatus(t, w, http.StatusBadRequest)
	wantMessage(t, w, "No fields")

	w = doRequest(t, r, "PUT", "/users/me", gin.H{"bio": "x"}, nil)
	wantStatus(t, w, http.StatusUnauthorized)
}
