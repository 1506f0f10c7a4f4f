// internal/domain/models/site.go
package models

// DefaultSiteName is shown in page chrome until configured otherwise.
const DefaultSiteName = "RoboHub"
