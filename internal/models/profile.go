package models

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleStudent   Role = "student"

	ProfileEntity = "profile"
)

// UserProfile mirrors the identity kept by the auth provider; the password
// hash is only set for accounts managed locally.
type UserProfile struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Role         Role      `bson:"role" json:"role"`
	Department   string    `bson:"department,omitempty" json:"department,omitempty"`
	JoinDate     time.Time `bson:"join_date" json:"join_date"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
}

var ValidRoles = map[string]bool{
	string(RoleAdmin):     true,
	string(RoleLibrarian): true,
	string(RoleStudent):   true,
}

func IsValidRole(role string) bool {
	return ValidRoles[role]
}

// Staff reports whether the role may manage the catalog and circulation.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleLibrarian
}
