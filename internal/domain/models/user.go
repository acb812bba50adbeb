package models

import "time"

type User struct {
	ID         int64      `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Email      string     `db:"email" json:"email"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Password   []byte     `db:"password" json:"-"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	DateJoined time.Time  `db:"date_joined" json:"date_joined"`
	LastLogin  *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// FullName returns "First Last" or the username when both are blank.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
