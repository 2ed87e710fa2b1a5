package db

import "time"

// User represents a registered user. PasswordHash never leaves the
// backend; API serialization lives in the handlers layer.
type User struct {
	ID               string
	TelegramHandle   string
	Name             string
	Email            string
	PasswordHash     string
	BirthData        *BirthData
	AstrologyProfile *AstrologyProfile
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BirthData holds a user's birth timestamp and location, used to derive
// astrology attributes.
type BirthData struct {
	Datetime  time.Time
	Latitude  *float64
	Longitude *float64
	PlaceName string
	Timezone  string
}

// AstrologyProfile holds derived sign labels.
type AstrologyProfile struct {
	SunSign       string
	MoonSign      string
	AscendantSign string
}

// Chat is the single persistent conversation thread owned by one user.
// TotalTokens equals the sum of per-message token counts at all times.
type Chat struct {
	ID          string
	UserID      string
	Title       string
	TotalTokens int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is one chat turn half. Immutable once appended.
type Message struct {
	ID        string
	ChatID    string
	Role      string
	Content   string
	Tokens    int
	CreatedAt time.Time
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left
// untouched; handle and password are immutable through this path.
type ProfileUpdate struct {
	Name             *string
	Email            *string
	BirthData        *BirthData
	AstrologyProfile *AstrologyProfile
}
