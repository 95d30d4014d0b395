package domain

import "time"

// FetchSettings is the singleton record holding the configuration the content
// fetcher needs: the base URL fetchable page addresses are built from and
// optional basic-auth credentials for staging environments.
type FetchSettings struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BaseURL       string    `gorm:"type:text" json:"base_url"`
	BasicAuthUser string    `gorm:"type:text" json:"basic_auth_user,omitempty"`
	BasicAuthPass string    `gorm:"type:text" json:"basic_auth_pass,omitempty"`
	UserAgent     string    `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for FetchSettings.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (FetchSettings) TableName() string {
	return "fetch_settings"
}
