package models

import "time"

type Club struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	City      *string   `json:"city,omitempty" db:"city"`
	Address   *string   `json:"address,omitempty" db:"address"`
	OwnerID   int       `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	LogoKey   *string   `json:"-" db:"logo_key"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"-"`

	Courts []Court `json:"courts,omitempty" db:"-"`
}

type CourtSurface string

const (
	SurfaceHard  CourtSurface = "hard"
	SurfaceClay  CourtSurface = "clay"
	SurfaceGrass CourtSurface = "grass"
)

type Court struct {
	ID        int          `json:"id" db:"id"`
	ClubID    int          `json:"club_id" db:"club_id"`
	Name      string       `json:"name" db:"name"`
	Surface   CourtSurface `json:"surface" db:"surface"`
	Indoor    bool         `json:"indoor" db:"indoor"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	PhotoKey  *string      `json:"-" db:"photo_key"`
	PhotoURL  *string      `json:"photo_url,omitempty" db:"-"`
}
