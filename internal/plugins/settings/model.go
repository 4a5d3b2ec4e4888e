// Package settings holds the site-wide configuration the admins edit:
// home banners, the promotional popup, navbar links, and the maintenance
// and coming-soon switches. Values live in a key-value table as JSON and
// are resolved into a typed SiteConfig for the public endpoint.
package settings

// Setting keys in the site_settings table.
const (
	keyBanners     = "banners"
	keyPopup       = "popup"
	keyNavbar      = "navbar_links"
	keyMaintenance = "maintenance_mode"
	keyComingSoon  = "coming_soon"
)

// Banner is one home-page banner slide.
type Banner struct {
	ImagePath string `json:"image_path"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	LinkURL   string `json:"link_url"`
}

// Popup is the promotional popup shown on first visit.
type Popup struct {
	Enabled   bool   `json:"enabled"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ImagePath string `json:"image_path"`
}

// NavLink is one navbar entry.
type NavLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// SiteConfig is the resolved site configuration served to the frontend.
type SiteConfig struct {
	Banners         []Banner  `json:"banners"`
	Popup           Popup     `json:"popup"`
	NavbarLinks     []NavLink `json:"navbar_links"`
	MaintenanceMode bool      `json:"maintenance_mode"`
	ComingSoon      bool      `json:"coming_soon"`
}

// SiteConfigRequest is the admin's full-replace update payload.
type SiteConfigRequest struct {
	Banners         []Banner  `json:"banners"`
	Popup           Popup     `json:"popup"`
	NavbarLinks     []NavLink `json:"navbar_links"`
	MaintenanceMode bool      `json:"maintenance_mode"`
	ComingSoon      bool      `json:"coming_soon"`
}
