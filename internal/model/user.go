package model

import (
	"time"

	"gorm.io/datatypes"
)

type Profile struct {
	FullName string `gorm:"size:100" json:"fullName"`
	Bio      string `gorm:"size:500" json:"bio"`
	Location string `gorm:"size:100" json:"location"`
	Website  string `gorm:"size:255" json:"website"`
	Avatar   string `gorm:"size:255" json:"avatar"`
	Github   string `gorm:"size:100" json:"github"`
	Twitter  string `gorm:"size:100" json:"twitter"`
}

type Settings struct {
	EmailNotifications bool   `json:"emailNotifications"`
	ShowEmail          bool   `json:"showEmail"`
	Theme              string `gorm:"size:20" json:"theme"`
	Language           string `gorm:"size:10" json:"language"`
}

// swagger:model User
type User struct {
	UUIDBase
	Username   string                      `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email      string                      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password   string                      `gorm:"size:100;not null" json:"-"`
	IsVerified bool                        `gorm:"default:false" json:"isVerified"`
	IsAdmin    bool                        `gorm:"default:false;index" json:"isAdmin"`
	IsBanned   bool                        `gorm:"default:false" json:"isBanned"`
	Reputation int                         `gorm:"default:0;index" json:"reputation"`
	Badges     datatypes.JSONSlice[string] `json:"badges"`
	Profile    Profile                     `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	Settings   Settings                    `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	SuspendedUntil *time.Time `json:"suspendedUntil,omitempty"`

	VerificationToken   string     `gorm:"size:64;index" json:"-"`
	VerificationExpires *time.Time `json:"-"`
	ResetPasswordToken  string     `gorm:"size:64;index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsSuspended reports whether a suspension is still running at now.
func (u *User) IsSuspended(now time.Time) bool {
	return u.SuspendedUntil != nil && u.SuspendedUntil.After(now)
}

// UserSummary is the author block embedded in content responses.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	Reputation int    `json:"reputation"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		Avatar:     u.Profile.Avatar,
		Reputation: u.Reputation,
	}
}
