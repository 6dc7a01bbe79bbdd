package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a profile can hold. Every signup starts as a student; only an admin
// can promote afterwards.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the three known roles
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleTeacher || role == RoleAdmin
}

// User holds the structure for the user collection in mongo. The document id
// is the principal id issued at signup, so profile and identity share a key.
type User struct {
	ID                   string             `json:"_id" bson:"_id"`
	Email                string             `json:"email" bson:"email"`
	DisplayName          string             `json:"displayName" bson:"displayName"`
	Role                 string             `json:"role" bson:"role"`
	Class                int                `json:"class,omitempty" bson:"class,omitempty"`
	AvatarURL            string             `json:"avatarURL,omitempty" bson:"avatarURL,omitempty"`
	Password             string             `json:"-" bson:"password"`
	Online               bool               `json:"online" bson:"online"`
	LastSeen             primitive.DateTime `json:"lastSeen,omitempty" bson:"lastSeen,omitempty"`
	ResetPasswordToken   string             `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires primitive.DateTime `json:"-" bson:"resetPasswordExpires,omitempty"`
	CreatedAt            primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt            primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// HasRole is the single capability check used by every gated route
func (u User) HasRole(role string) bool {
	return u.Role == role
}

// UserSummary is the public slice of a profile returned by the directory,
// just enough for picking a direct-message partner
type UserSummary struct {
	ID          string `json:"_id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarURL,omitempty"`
	Online      bool   `json:"online"`
}

// Summary trims a profile down to its public directory fields
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Online:      u.Online,
	}
}

// CreateUserRequest holds the structure for the signup request body
type CreateUserRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	DisplayName   string `json:"displayName"`
	Class         int    `json:"class"`
	AffiliateCode string `json:"affiliateCode"`
}

// UpdateUserRequest holds the structure for the profile edit request body.
// Class is a pointer so we can tell "absent" from "zero" and reject edits.
type UpdateUserRequest struct {
	DisplayName string `json:"displayName"`
	Class       *int   `json:"class,omitempty"`
}

// UpdateRoleRequest holds the structure for the admin role change body
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
