package prompt

import (
	"strings"
	"testing"
	"time"

	"starry-api/internal/repository/db"
)

func TestBuildSystemPrompt_NoProfile(t *testing.T) {
	got := BuildSystemPrompt(&db.User{ID: "u1"}, nil)

	if !strings.Contains(got, "expert astrologer") {
		t.Error("Expected expertise preamble")
	}
	if strings.Contains(got, "Birth Chart Information") {
		t.Error("Expected no birth chart section without profile data")
	}
	if strings.Contains(got, "Compatibility Analysis Context") {
		t.Error("Expected no compatibility section")
	}
	if !strings.Contains(got, "Astrological Knowledge Reference") {
		t.Error("Expected reference block to always be present")
	}
}

func TestBuildSystemPrompt_WithBirthChart(t *testing.T) {
	birth := time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC)
	user := &db.User{
		ID: "u1",
		BirthData: &db.BirthData{
			Datetime:  birth,
			PlaceName: "Lisbon, Portugal",
		},
		AstrologyProfile: &db.AstrologyProfile{
			SunSign:  "Gemini",
			MoonSign: "Pisces",
		},
	}

	got := BuildSystemPrompt(user, nil)

	if !strings.Contains(got, "Birth Chart Information") {
		t.Fatal("Expected birth chart section")
	}
	if !strings.Contains(got, "- Sun Sign: Gemini") {
		t.Error("Expected sun sign line")
	}
	if !strings.Contains(got, "- Moon Sign: Pisces") {
		t.Error("Expected moon sign line")
	}
	if strings.Contains(got, "Ascendant Sign") {
		t.Error("Expected absent ascendant to be skipped")
	}
	if !strings.Contains(got, "- Birth Date/Time: 1990-06-15 14:30") {
		t.Error("Expected formatted birth datetime")
	}
	if !strings.Contains(got, "- Birth Location: Lisbon, Portugal") {
		t.Error("Expected birth location line")
	}
}

func TestBuildSystemPrompt_CompatibilityRequiresPersonB(t *testing.T) {
	user := &db.User{ID: "u1"}

	withoutB := BuildSystemPrompt(user, &ChatContext{RequestType: RequestTypeCompatibility})
	if strings.Contains(withoutB, "Compatibility Analysis Context") {
		t.Error("Expected no compatibility section without personB")
	}

	withB := BuildSystemPrompt(user, &ChatContext{
		RequestType: RequestTypeCompatibility,
		PersonB:     &Person{SunSign: "Leo", AscendantSign: "Virgo"},
	})
	if !strings.Contains(withB, "Compatibility Analysis Context") {
		t.Fatal("Expected compatibility section")
	}
	if !strings.Contains(withB, "- Sun Sign: Leo") || !strings.Contains(withB, "- Ascendant Sign: Virgo") {
		t.Error("Expected personB sign lines")
	}
	if !strings.Contains(withB, "General Compatibility Guidance") {
		t.Error("Expected compatibility guide")
	}
}

func TestBuildSystemPrompt_GeneralTypeIgnoresPersonB(t *testing.T) {
	got := BuildSystemPrompt(&db.User{ID: "u1"}, &ChatContext{
		RequestType: "general",
		PersonB:     &Person{SunSign: "Leo"},
	})
	if strings.Contains(got, "Compatibility Analysis Context") {
		t.Error("Expected no compatibility section for general request type")
	}
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	user := &db.User{
		ID:               "u1",
		AstrologyProfile: &db.AstrologyProfile{SunSign: "Aries"},
	}
	ctx := &ChatContext{
		RequestType: RequestTypeCompatibility,
		PersonB:     &Person{SunSign: "Libra"},
	}

	first := BuildSystemPrompt(user, ctx)
	for i := 0; i < 5; i++ {
		if got := BuildSystemPrompt(user, ctx); got != first {
			t.Fatal("Expected identical output for identical inputs")
		}
	}
}
