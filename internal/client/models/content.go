package models

// Achievement is a past event shown on the public site.
type Achievement struct {
	ID          ID     `json:"id"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Date        string `json:"date"`
	Image       string `json:"image,omitempty"`
}

func (a Achievement) Key() string { return string(a.ID) }

type Activity struct {
	ID          ID     `json:"id"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Image       string `json:"image,omitempty"`
}

func (a Activity) Key() string { return string(a.ID) }

type Leader struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

func (l Leader) Key() string { return string(l.ID) }

// MediaItem is a gallery entry with one or more images.
type MediaItem struct {
	ID          ID       `json:"id"`
	Description string   `json:"description"`
	Media       []string `json:"media,omitempty"`
}

func (m MediaItem) Key() string { return string(m.ID) }

// Sealed field sets, sent inside the envelope on content screens.

type AchievementFields struct {
	Description string `json:"description" validate:"required" label:"Description"`
	Venue       string `json:"venue" validate:"required" label:"Venue"`
	Date        string `json:"date" validate:"required,pastdate" label:"Date"`
}

type ActivityFields struct {
	Description string `json:"description" validate:"required" label:"Description"`
	Location    string `json:"location" validate:"required" label:"Location"`
	Date        string `json:"date" validate:"required" label:"Date"`
}

type LeaderFields struct {
	Name        string `json:"name" validate:"required" label:"Name"`
	Role        string `json:"role" validate:"required" label:"Role"`
	Description string `json:"description" validate:"required" label:"Description"`
}

type MediaFields struct {
	Description string `json:"description" validate:"required" label:"Description"`
}
