package dto

import (
	"imager/internal/domain/models"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8,max=128"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func (input RegisterInput) ToDomain(passwordHash []byte) models.User {
	return models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: passwordHash,
	}
}

// LoginInput is the session login form. Next is the path to return to.
type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" query:"next"`
}

// ProfileInput edits the viewer's profile plus the user's name and email.
type ProfileInput struct {
	Email       string   `form:"email" validate:"omitempty,email,max=254"`
	FirstName   string   `form:"first_name" validate:"max=150"`
	LastName    string   `form:"last_name" validate:"max=150"`
	Website     string   `form:"website" validate:"omitempty,url,max=180"`
	Location    string   `form:"location" validate:"max=180"`
	Fee         string   `form:"fee" validate:"max=12"`
	Camera      string   `form:"camera" validate:"max=4"`
	Services    []string `form:"services"`
	PhotoStyles []string `form:"photostyles"`
	Bio         string   `form:"bio"`
	Phone       string   `form:"phone" validate:"max=20"`
	// IsActive lists the profile in the photographers directory.
	IsActive bool `form:"is_active"`
}

func ProfileInputFrom(user models.User, p models.Profile) ProfileInput {
	in := ProfileInput{
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Website:     p.Website,
		Location:    p.Location,
		Camera:      string(p.Camera),
		Services:    p.Services,
		PhotoStyles: p.PhotoStyles,
		Bio:         p.Bio,
		Phone:       p.Phone,
		IsActive:    p.IsActive,
	}
	if p.Fee != nil {
		in.Fee = *p.Fee
	}
	return in
}
