package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// UserStatus tracks the seller promotion workflow. The zero value means no
// request was ever made.
type UserStatus string

const (
	UserStatusNone      UserStatus = ""
	UserStatusRequested UserStatus = "Requested"
	UserStatusVerified  UserStatus = "Verified"
)

type User struct {
	ID        string     `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Name      string     `json:"name" db:"name"`
	Image     string     `json:"image" db:"image"`
	Role      Role       `json:"role" db:"role"`
	Status    UserStatus `json:"status,omitempty" db:"status"`
	CreatedAt time.Time  `json:"timestamp" db:"created_at"`
}

// Party is the name/email/image snapshot copied into plants and orders.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

func (u *User) Party() Party {
	return Party{Name: u.Name, Email: u.Email, Image: u.Image}
}
