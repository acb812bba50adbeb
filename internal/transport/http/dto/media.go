package dto

import (
	"mime/multipart"
	"strconv"

	"imager/internal/domain/models"
)

// PhotoInput is the photo create/edit form. Image is required on create only.
type PhotoInput struct {
	Title       string                `form:"title" validate:"max=180"`
	Description string                `form:"description"`
	Visibility  string                `form:"published" validate:"required"`
	Image       *multipart.FileHeader `form:"-"`
}

func PhotoInputFrom(p models.Photo) PhotoInput {
	return PhotoInput{
		Title:       p.Title,
		Description: p.Description,
		Visibility:  string(p.Visibility),
	}
}

// AlbumInput is the album create/edit form. Cover 0 means no cover.
type AlbumInput struct {
	Title       string  `form:"title" validate:"max=180"`
	Description string  `form:"description"`
	Visibility  string  `form:"published" validate:"required"`
	Photos      []int64 `form:"photos"`
	Cover       int64   `form:"cover"`
}

func AlbumInputFrom(a models.Album) AlbumInput {
	in := AlbumInput{
		Title:       a.Title,
		Description: a.Description,
		Visibility:  string(a.Visibility),
		Photos:      a.PhotoIDs,
	}
	if a.CoverID != nil {
		in.Cover = *a.CoverID
	}
	return in
}

// Selected reports whether the photo is ticked in the membership list.
func (in AlbumInput) Selected(id int64) bool {
	for _, v := range in.Photos {
		if v == id {
			return true
		}
	}
	return false
}

// PhotoResponse is the listing API projection of a photo.
type PhotoResponse struct {
	ID            int64   `json:"id" example:"1"`
	Image         string  `json:"image" example:"http://localhost:8080/media/images/0b6f.png"`
	Title         string  `json:"title" example:"Sunset"`
	Description   string  `json:"description"`
	DateUploaded  string  `json:"date_uploaded" example:"2024-01-01T12:00:00Z"`
	DateModified  string  `json:"date_modified" example:"2024-01-01T12:00:00Z"`
	DatePublished *string `json:"date_published" example:"2024-01-01T12:00:00Z"`
	Visibility    string  `json:"visibility" example:"PUBLIC"`
	// Published repeats Visibility under the form field name.
	Published string `json:"published" example:"PUBLIC"`
}

func NewPhotoResponse(p models.Photo, imageURL string) PhotoResponse {
	resp := PhotoResponse{
		ID:           p.ID,
		Image:        imageURL,
		Title:        p.Title,
		Description:  p.Description,
		DateUploaded: p.DateUploaded.UTC().Format(timeLayout),
		DateModified: p.DateModified.UTC().Format(timeLayout),
		Visibility:   string(p.Visibility),
		Published:    string(p.Visibility),
	}
	if p.DatePublished != nil {
		s := p.DatePublished.UTC().Format(timeLayout)
		resp.DatePublished = &s
	}
	return resp
}

const timeLayout = "2006-01-02T15:04:05.999999Z07:00"

// ParseID parses a positive path id.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
