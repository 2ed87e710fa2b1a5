// Package prompt assembles the system prompt for chat completions as a
// pure function over the user's profile, so it can be unit tested
// without network access.
package prompt

import (
	"fmt"
	"strings"

	"starry-api/internal/astro"
	"starry-api/internal/repository/db"
)

// RequestTypeCompatibility marks a turn that asks for a compatibility
// reading against a second person.
const RequestTypeCompatibility = "compatibility"

// Person carries the known sign labels of a comparison person.
type Person struct {
	SunSign       string `json:"sunSign,omitempty"`
	MoonSign      string `json:"moonSign,omitempty"`
	AscendantSign string `json:"ascendantSign,omitempty"`
}

// ChatContext is the optional per-turn context sent by the client.
type ChatContext struct {
	RequestType string  `json:"requestType,omitempty"`
	PersonB     *Person `json:"personB,omitempty"`
}

// BuildSystemPrompt returns the system-role text for a chat turn.
// It always starts with the fixed expertise preamble and always ends
// with the static sign-knowledge reference block. The birth-chart and
// compatibility sections appear only when their inputs exist; absent
// fields are skipped silently. Output is deterministic given inputs.
func BuildSystemPrompt(user *db.User, chatCtx *ChatContext) string {
	var b strings.Builder
	b.WriteString(astro.SystemPrompt)

	if user != nil && (user.BirthData != nil || user.AstrologyProfile != nil) {
		b.WriteString("\n\nUser's Birth Chart Information:\n")

		if profile := user.AstrologyProfile; profile != nil {
			writeSigns(&b, profile.SunSign, profile.MoonSign, profile.AscendantSign)
		}

		if birth := user.BirthData; birth != nil {
			if !birth.Datetime.IsZero() {
				fmt.Fprintf(&b, "- Birth Date/Time: %s\n", birth.Datetime.UTC().Format("2006-01-02 15:04"))
			}
			if birth.PlaceName != "" {
				fmt.Fprintf(&b, "- Birth Location: %s\n", birth.PlaceName)
			}
		}
	}

	if chatCtx != nil && chatCtx.RequestType == RequestTypeCompatibility && chatCtx.PersonB != nil {
		b.WriteString("\n\nCompatibility Analysis Context:\n")
		b.WriteString("Analyzing compatibility between the user and another person with:\n")
		writeSigns(&b, chatCtx.PersonB.SunSign, chatCtx.PersonB.MoonSign, chatCtx.PersonB.AscendantSign)
		b.WriteString("\nGeneral Compatibility Guidance:\n")
		b.WriteString(astro.CompatibilityGuide())
	}

	b.WriteString("\n\nAstrological Knowledge Reference:\n")
	b.WriteString(astro.ReferenceBlock())

	return b.String()
}

func writeSigns(b *strings.Builder, sun, moon, ascendant string) {
	if sun != "" {
		fmt.Fprintf(b, "- Sun Sign: %s\n", sun)
	}
	if moon != "" {
		fmt.Fprintf(b, "- Moon Sign: %s\n", moon)
	}
	if ascendant != "" {
		fmt.Fprintf(b, "- Ascendant Sign: %s\n", ascendant)
	}
}
