// Package user defines the user and follow domain models.
package user

import "time"

// User is a member profile. Updates overwrite username, bio and picture as a
// whole; there is no partial merge.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Bio        string    `json:"bio"`
	ProfilePic string    `json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
}

// Follow is a directed relationship between two users. A pair is recorded at
// most once; there is no unfollow path.
type Follow struct {
	FollowerID int64 `json:"follower_id"`
	FollowedID int64 `json:"followed_id"`
}
