// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles as stored on the user document. A user with an empty role has
// signed in but picked neither registration path yet.
const (
	RoleHRManager = "HRManager"
	RoleEmployee  = "employee"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`

	// HREmail identifies the tenant a member belongs to; nil until an
	// HRManager assigns them. For an HRManager it is their own email.
	HREmail     *string `bson:"hrEmail" json:"hrEmail"`
	Company     string  `bson:"company,omitempty" json:"company,omitempty"`
	CompanyLogo string  `bson:"companyLogo,omitempty" json:"companyLogo,omitempty"`

	// EmployeeCount is the purchased seat allowance, HRManager only.
	EmployeeCount int64 `bson:"employeeCount,omitempty" json:"employeeCount,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Tenant returns the tenant key this user operates under: an HRManager
// owns the tenant named by their own email, a member belongs to the
// tenant named by hrEmail. Empty for unassigned users.
func (u *User) Tenant() string {
	if u.Role == RoleHRManager {
		return u.Email
	}
	if u.HREmail != nil {
		return *u.HREmail
	}
	return ""
}
