package handlers

import (
	"time"

	"starry-api/internal/repository/db"
	"starry-api/internal/service/chat"
)

// UserView is the outward user representation. The password hash never
// appears here.
type UserView struct {
	ID               string                `json:"id"`
	TelegramHandle   string                `json:"telegramHandle"`
	Name             string                `json:"name"`
	Email            string                `json:"email,omitempty"`
	BirthData        *BirthDataView        `json:"birthData,omitempty"`
	AstrologyProfile *AstrologyProfileView `json:"astrologyProfile,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

type BirthDataView struct {
	Datetime time.Time    `json:"datetime,omitempty"`
	Location LocationView `json:"location"`
	Timezone string       `json:"timezone,omitempty"`
}

type LocationView struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	PlaceName string   `json:"placeName,omitempty"`
}

type AstrologyProfileView struct {
	SunSign       string `json:"sunSign,omitempty"`
	MoonSign      string `json:"moonSign,omitempty"`
	AscendantSign string `json:"ascendantSign,omitempty"`
}

type MessageView struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Tokens    int       `json:"tokens"`
}

type ChatView struct {
	Title           string        `json:"title"`
	Messages        []MessageView `json:"messages"`
	TotalTokens     int           `json:"totalTokens"`
	RemainingTokens int           `json:"remainingTokens"`
	MessagesCount   int           `json:"messagesCount"`
	MaxMessages     int           `json:"maxMessages"`
	CreatedAt       time.Time     `json:"createdAt"`
	LastUpdated     time.Time     `json:"lastUpdated"`
}

func newUserView(user *db.User) *UserView {
	view := &UserView{
		ID:             user.ID,
		TelegramHandle: user.TelegramHandle,
		Name:           user.Name,
		Email:          user.Email,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
	if b := user.BirthData; b != nil {
		view.BirthData = &BirthDataView{
			Datetime: b.Datetime,
			Location: LocationView{
				Latitude:  b.Latitude,
				Longitude: b.Longitude,
				PlaceName: b.PlaceName,
			},
			Timezone: b.Timezone,
		}
	}
	if a := user.AstrologyProfile; a != nil {
		view.AstrologyProfile = &AstrologyProfileView{
			SunSign:       a.SunSign,
			MoonSign:      a.MoonSign,
			AscendantSign: a.AscendantSign,
		}
	}
	return view
}

func newChatView(view *chat.ChatView) *ChatView {
	messages := make([]MessageView, 0, len(view.Messages))
	for _, msg := range view.Messages {
		messages = append(messages, MessageView{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			Tokens:    msg.Tokens,
		})
	}
	return &ChatView{
		Title:           view.Title,
		Messages:        messages,
		TotalTokens:     view.TotalTokens,
		RemainingTokens: view.RemainingTokens,
		MessagesCount:   view.MessagesCount,
		MaxMessages:     view.MaxMessages,
		CreatedAt:       view.CreatedAt,
		LastUpdated:     view.LastUpdated,
	}
}

func birthDataFromView(view *BirthDataView) *db.BirthData {
	if view == nil {
		return nil
	}
	return &db.BirthData{
		Datetime:  view.Datetime,
		Latitude:  view.Location.Latitude,
		Longitude: view.Location.Longitude,
		PlaceName: view.Location.PlaceName,
		Timezone:  view.Timezone,
	}
}

func astrologyProfileFromView(view *AstrologyProfileView) *db.AstrologyProfile {
	if view == nil {
		return nil
	}
	return &db.AstrologyProfile{
		SunSign:       view.SunSign,
		MoonSign:      view.MoonSign,
		AscendantSign: view.AscendantSign,
	}
}
