// Package locations manages the venues matches are played at. The public
// site links each venue to an external map URL.
package locations

// Location is a match venue.
type Location struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	City          string `json:"city"`
	GoogleMapsURL string `json:"google_maps_url"`
}

// LocationRequest holds the fields for creating or updating a location.
type LocationRequest struct {
	Name          string `json:"name"`
	City          string `json:"city"`
	GoogleMapsURL string `json:"google_maps_url"`
}
