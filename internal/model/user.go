package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Workers, sales staff and administrators are all
// users; what they may do is decided by the role they reference.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password, never serialised.
//  RoleID       – foreign key into the roles table.
//  Role         – joined role row, present when the query loads it.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64      `json:"id"`           // users.id
    Name         string      `json:"name"`         // users.name
    Email        string      `json:"email"`        // users.email
    PasswordHash string      `json:"-"`            // users.password_hash
    RoleID       uint64      `json:"roleId"`       // users.role_id
    Role         *RoleRecord `json:"role,omitempty"`
    CreatedAt    time.Time   `json:"createdAt"`    // users.created_at
    UpdatedAt    time.Time   `json:"updatedAt"`    // users.updated_at
}

// UserSummary is the public projection of a user attached to orders.
type UserSummary struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email,omitempty"`
}

// RoleRecord represents a row in the `roles` table.  The name is free
// text in the database; only names that parse into a Role grant
// permissions.
type RoleRecord struct {
    ID   uint64 `json:"id"`   // roles.id
    Name string `json:"name"` // roles.name
}
