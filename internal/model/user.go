package model

// Role names used by the backend.
const (
	RoleAdmin  = "ADMIN"
	RoleStaff  = "STAFF"
	RoleClient = "CLIENT"
	RoleTester = "TESTER"
)

// User is the backend's user DTO.  Passwords are never returned.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Role is a row of GET /roles.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewUser is the body of POST /users, used both for public sign-up and
// for admin-created accounts.
type NewUser struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// UserPatch carries the optional fields of PATCH /users/{id} and the
// profile fields of PUT /users/{id}.
type UserPatch struct {
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Role        *string `json:"role,omitempty"`
}

// PasswordChange is the body of POST /users/change-password.
type PasswordChange struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Credentials is the body of POST /users/authenticate.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
