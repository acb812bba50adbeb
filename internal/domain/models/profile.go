package models

import "slices"

type CameraType string

const (
	CameraDSLR            CameraType = "DSLR"
	CameraMirrorless      CameraType = "M"
	CameraAdvancedCompact CameraType = "AC"
	CameraSLR             CameraType = "SLR"
)

// Choice is a stored value with its human label, in display order.
type Choice struct {
	Value string
	Label string
}

var CameraChoices = []Choice{
	{string(CameraDSLR), "Digital Single Lens Reflex"},
	{string(CameraMirrorless), "Mirrorless"},
	{string(CameraAdvancedCompact), "Advanced Compact"},
	{string(CameraSLR), "Single Lens Reflex"},
}

var ServiceChoices = []Choice{
	{"weddings", "Weddings"},
	{"headshots", "HeadShots"},
	{"landscape", "LandScape"},
	{"portraits", "Portraits"},
	{"art", "Art"},
}

var PhotoStyleChoices = []Choice{
	{"blackandwhite", "Black and White"},
	{"night", "Night"},
	{"macro", "Macro"},
	{"3d", "3D"},
	{"artistic", "Artistic"},
	{"underwater", "Underwater"},
}

// Profile is the photographer extension of a User. Exactly one exists per user.
type Profile struct {
	UserID      int64      `db:"user_id" json:"user_id"`
	Username    string     `db:"username" json:"username"`
	Website     string     `db:"website" json:"website,omitempty"`
	Location    string     `db:"location" json:"location,omitempty"`
	Fee         *string    `db:"fee" json:"fee,omitempty"`
	Camera      CameraType `db:"camera" json:"camera,omitempty"`
	Services    []string   `db:"services" json:"services"`
	PhotoStyles []string   `db:"photostyles" json:"photostyles"`
	Bio         string     `db:"bio" json:"bio,omitempty"`
	Phone       string     `db:"phone" json:"phone,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
}

func ValidCamera(c CameraType) bool {
	return c == "" || hasChoice(CameraChoices, string(c))
}

func ValidServices(values []string) bool {
	return allChoices(ServiceChoices, values)
}

func ValidPhotoStyles(values []string) bool {
	return allChoices(PhotoStyleChoices, values)
}

// ChoiceLabel returns the label for value, or value itself when unknown.
func ChoiceLabel(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

func hasChoice(choices []Choice, value string) bool {
	return slices.ContainsFunc(choices, func(c Choice) bool { return c.Value == value })
}

func allChoices(choices []Choice, values []string) bool {
	for _, v := range values {
		if !hasChoice(choices, v) {
			return false
		}
	}
	return true
}
