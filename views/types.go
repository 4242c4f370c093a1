package views

import "github.com/eringen/pinblob/storage"

// SiteConfig holds site-wide settings every page receives.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "PinBlob")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
}

// GalleryPage is everything the gallery template renders.
type GalleryPage struct {
	Site      SiteConfig
	Images    []storage.StoredImage
	IsAdmin   bool
	CanUpload bool
	// Error and Details are set when the listing failed.
	Error   string
	Details string
}
