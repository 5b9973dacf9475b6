package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemberRole string

const (
	RoleViewer MemberRole = "viewer"
	RoleEditor MemberRole = "editor"
	RoleAdmin  MemberRole = "admin"
)

// CanEdit reports whether the role grants edit rights on project tasks.
func (r MemberRole) CanEdit() bool {
	return r == RoleEditor || r == RoleAdmin
}

type Member struct {
	UserID primitive.ObjectID `json:"userId" bson:"userId"`
	Role   MemberRole         `json:"role" bson:"role"`
}

type Project struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	OwnerID     primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Members     []Member           `json:"members" bson:"members"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MemberRole returns the membership role for userID, or "" when the user is
// not a member. The owner is not implicitly a member.
func (p *Project) MemberRole(userID primitive.ObjectID) MemberRole {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

// HasMember reports whether userID is the owner or a listed member.
func (p *Project) HasMember(userID primitive.ObjectID) bool {
	if p.OwnerID == userID {
		return true
	}
	return p.MemberRole(userID) != ""
}
