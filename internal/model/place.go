package model

import "time"

// Place is an independent point of interest. Reviews may reference one;
// deleting a place clears that reference rather than deleting the review.
type Place struct {
	ID            string    `json:"id"`
	Region        string    `json:"region"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Name          string    `json:"name"`
	DetailInfo    *string   `json:"detail_info,omitempty"`
	DisabledInfo  *string   `json:"disabled_info,omitempty"`
	IsRecommended bool      `json:"is_recommended"`
	DataQuality   *string   `json:"data_quality,omitempty"`
	ModifiedAt    time.Time `json:"modified_at"`
}

// PlaceSummary is the slice of a place joined onto reviews and wishlists.
type PlaceSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// CreatePlaceParams holds the attributes for inserting a place.
type CreatePlaceParams struct {
	Region        string
	Latitude      float64
	Longitude     float64
	Name          string
	DetailInfo    *string
	DisabledInfo  *string
	IsRecommended bool
	DataQuality   *string
}

// PlaceUpdate lists the place fields that may change. Nil fields are left
// untouched.
type PlaceUpdate struct {
	Region        *string
	Latitude      *float64
	Longitude     *float64
	Name          *string
	DetailInfo    *string
	DisabledInfo  *string
	IsRecommended *bool
	DataQuality   *string
}

// IsEmpty reports whether the update carries no changes.
func (u PlaceUpdate) IsEmpty() bool {
	return u.Region == nil && u.Latitude == nil && u.Longitude == nil &&
		u.Name == nil && u.DetailInfo == nil && u.DisabledInfo == nil &&
		u.IsRecommended == nil && u.DataQuality == nil
}
