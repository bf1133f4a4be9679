package models

import (
	"time"
)

type User struct {
	UserID      int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname   string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname   string     `gorm:"column:user_lname" json:"user_lname"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	Affiliation *string    `gorm:"column:affiliation" json:"affiliation,omitempty"`
	Country     *string    `gorm:"column:country" json:"country,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// FullName returns the display name used in reviewer grids and emails.
func (u *User) FullName() string {
	if u.UserFname == "" {
		return u.UserLname
	}
	return u.UserFname + " " + u.UserLname
}

// UserGroup is a role bundle scoped to a publishing context. Which stages
// the group may act in is configured through UserGroupStage rows and is
// read-only to the assignment logic.
type UserGroup struct {
	UserGroupID   int        `gorm:"primaryKey;column:user_group_id" json:"user_group_id"`
	ContextID     int        `gorm:"column:context_id" json:"context_id"`
	RoleID        RoleID     `gorm:"column:role_id" json:"role_id"`
	Name          string     `gorm:"column:name" json:"name"`
	Abbrev        *string    `gorm:"column:abbrev" json:"abbrev,omitempty"`
	RecommendOnly bool       `gorm:"column:recommend_only" json:"recommend_only"`
	IsDefault     bool       `gorm:"column:is_default" json:"is_default"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
}

// UserGroupStage marks a user group as permitted to act in a workflow stage.
type UserGroupStage struct {
	UserGroupID int           `gorm:"primaryKey;column:user_group_id" json:"user_group_id"`
	ContextID   int           `gorm:"column:context_id" json:"context_id"`
	StageID     WorkflowStage `gorm:"primaryKey;column:stage_id" json:"stage_id"`
}

// UserUserGroup is a membership row binding a user to a user group.
type UserUserGroup struct {
	UserID      int `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserGroupID int `gorm:"primaryKey;column:user_group_id" json:"user_group_id"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (UserGroup) TableName() string {
	return "user_groups"
}

func (UserGroupStage) TableName() string {
	return "user_group_stage"
}

func (UserUserGroup) TableName() string {
	return "user_user_groups"
}
