package model

import "time"

// Follow is a directed edge; the composite key serves follower lookups and
// the FollowingID index serves follower lists.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;type:varchar(36)" json:"followerId"`
	FollowingID string    `gorm:"primaryKey;type:varchar(36);index" json:"followingId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Follow) TableName() string {
	return "follows"
}

// Friendship stores each unordered pair once with UserAID < UserBID.
type Friendship struct {
	UserAID   string    `gorm:"column:user_a_id;primaryKey;type:varchar(36)" json:"userAId"`
	UserBID   string    `gorm:"column:user_b_id;primaryKey;type:varchar(36);index" json:"userBId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// NewFriendship orders the pair so that (a, b) and (b, a) map to one row.
func NewFriendship(a, b string) Friendship {
	if b < a {
		a, b = b, a
	}
	return Friendship{UserAID: a, UserBID: b}
}
