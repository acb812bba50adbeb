package models

import (
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityShared  Visibility = "SHARED"
	VisibilityPublic  Visibility = "PUBLIC"
)

const (
	DefaultTitle   = "Untitled"
	MaxTitleLength = 180
)

var VisibilityChoices = []Choice{
	{string(VisibilityPrivate), "Private"},
	{string(VisibilityShared), "Shared"},
	{string(VisibilityPublic), "Public"},
}

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	}
	return false
}

// Photo is an image uploaded by a single owner.
type Photo struct {
	ID            int64      `db:"id" json:"id"`
	OwnerID       int64      `db:"owner_id" json:"-"`
	OwnerUsername string     `db:"username" json:"-"`
	Image         string     `db:"image" json:"image"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	DateUploaded  time.Time  `db:"date_uploaded" json:"date_uploaded"`
	DateModified  time.Time  `db:"date_modified" json:"date_modified"`
	DatePublished *time.Time `db:"date_published" json:"date_published"`
	Visibility    Visibility `db:"visibility" json:"visibility"`
}

// Album groups photos. Membership is an unordered set of photo ids.
type Album struct {
	ID            int64      `db:"id" json:"id"`
	OwnerID       int64      `db:"owner_id" json:"-"`
	OwnerUsername string     `db:"username" json:"-"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	CoverID       *int64     `db:"cover_id" json:"cover,omitempty"`
	CoverImage    *string    `db:"cover_image" json:"-"`
	PhotoIDs      []int64    `json:"photos"`
	DateUploaded  time.Time  `db:"date_uploaded" json:"date_uploaded"`
	DateModified  time.Time  `db:"date_modified" json:"date_modified"`
	DatePublished *time.Time `db:"date_published" json:"date_published"`
	Visibility    Visibility `db:"visibility" json:"visibility"`
}

func (p Photo) Owner() string          { return p.OwnerUsername }
func (p Photo) Level() Visibility      { return p.Visibility }
func (a Album) Owner() string          { return a.OwnerUsername }
func (a Album) Level() Visibility      { return a.Visibility }
func (a Album) HasPhoto(id int64) bool { return containsID(a.PhotoIDs, id) }
func (a Album) IsCover(id int64) bool  { return a.CoverID != nil && *a.CoverID == id }

// NormalizeTitle trims the title and falls back to DefaultTitle when blank.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
