package models

import "time"

// Roles carried in the "role" token claim.
const (
	RoleJobSeeker = "jobseeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// IsSelfServiceRole reports whether role may be chosen at registration.
// Admin accounts are provisioned out of band.
func IsSelfServiceRole(role string) bool {
	return role == RoleJobSeeker || role == RoleEmployer
}

type User struct {
	ID           string
	Email        string
	Role         string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}
