// Package astro holds the static astrology domain knowledge injected
// into system prompts.
package astro

import "encoding/json"

// SystemPrompt is the fixed domain-expertise preamble every system
// prompt starts with.
const SystemPrompt = `You are an expert astrologer specializing in personalized readings and compatibility analysis.
You provide insightful, accurate, and personalized astrological guidance based on birth chart data.

Key principles:
- Always consider the person's birth chart data when available
- Provide specific, actionable insights rather than vague generalizations
- Explain astrological concepts in an accessible way
- Be supportive and encouraging while being honest about challenges
- Focus on personal growth and understanding`

// Signs maps each zodiac sign to its core description.
var Signs = map[string]string{
	"aries":       "Independent, pioneering, energetic, and direct. Natural leaders who initiate action.",
	"taurus":      "Steady, practical, sensual, and determined. Values security and consistency.",
	"gemini":      "Curious, adaptable, communicative, and versatile. Thrives on variety and connection.",
	"cancer":      "Intuitive, nurturing, protective, and emotional. Values home and family.",
	"leo":         "Confident, creative, generous, and dramatic. Natural performers who seek recognition.",
	"virgo":       "Analytical, helpful, perfectionist, and practical. Focused on improvement and service.",
	"libra":       "Diplomatic, harmonious, artistic, and social. Seeks balance and partnership.",
	"scorpio":     "Intense, transformative, mysterious, and powerful. Seeks depth and authenticity.",
	"sagittarius": "Adventurous, philosophical, optimistic, and freedom-loving. Seeks truth and expansion.",
	"capricorn":   "Ambitious, disciplined, responsible, and traditional. Focused on achievement and status.",
	"aquarius":    "Independent, innovative, humanitarian, and unconventional. Values uniqueness and progress.",
	"pisces":      "Compassionate, intuitive, artistic, and spiritual. Deeply empathetic and imaginative.",
}

// Positions maps the main chart positions to their meaning.
var Positions = map[string]string{
	"sun":       "The Sun sign represents your core identity, ego, and life purpose. It's how you express your essential self and what drives you at the deepest level.",
	"moon":      "The Moon sign governs your emotional nature, subconscious reactions, and emotional needs. It's how you process feelings and what makes you feel secure.",
	"ascendant": "The Ascendant (Rising sign) is your outward personality, how others first perceive you, and your approach to new situations.",
}

// Compatibility holds general synastry guidance used for compatibility
// requests.
var Compatibility = map[string]string{
	"sameSign":    "When two people share the same sign, they often have an intuitive understanding of each other's motivations and reactions. This creates a strong foundation of empathy, but can also amplify both positive and negative traits.",
	"fire":        "Fire signs (Aries, Leo, Sagittarius) together create dynamic, passionate relationships with lots of energy and enthusiasm, but may sometimes clash due to competing egos.",
	"earth":       "Earth signs (Taurus, Virgo, Capricorn) together build stable, practical relationships focused on security and long-term goals, though they may sometimes lack spontaneity.",
	"air":         "Air signs (Gemini, Libra, Aquarius) together enjoy intellectual connection, communication, and social activities, but may struggle with emotional depth.",
	"water":       "Water signs (Cancer, Scorpio, Pisces) together share deep emotional understanding and intuition, but may become overwhelmed by intensity.",
	"fireAir":     "Fire and Air signs energize each other - Air feeds Fire's passion while Fire inspires Air's ideas into action.",
	"earthWater":  "Earth and Water signs nurture each other - Earth provides stability for Water's emotions while Water softens Earth's rigidity.",
}

// ReferenceBlock renders the static chart-position and sign knowledge as
// indented JSON. Go's map marshaling sorts keys, so the output is
// deterministic.
func ReferenceBlock() string {
	reference := struct {
		Positions map[string]string `json:"positions"`
		Signs     map[string]string `json:"signs"`
	}{
		Positions: Positions,
		Signs:     Signs,
	}

	data, err := json.MarshalIndent(reference, "", "  ")
	if err != nil {
		// Static data; marshaling cannot fail at runtime.
		return ""
	}
	return string(data)
}

// CompatibilityGuide renders the synastry guidance as indented JSON.
func CompatibilityGuide() string {
	data, err := json.MarshalIndent(Compatibility, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
