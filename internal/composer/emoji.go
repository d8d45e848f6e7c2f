package composer

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark-emoji/definition"
)

// Emoji is one picker entry.
type Emoji struct {
	ShortName string
	Glyph     string
}

var pickerShortNames = []string{
	"grinning", "smiley", "smile", "grin", "laughing", "sweat_smile", "joy", "rofl",
	"slightly_smiling_face", "wink", "blush", "innocent", "heart_eyes", "kissing_heart",
	"yum", "stuck_out_tongue_winking_eye", "thinking", "neutral_face", "expressionless",
	"smirk", "unamused", "roll_eyes", "relieved", "pensive", "sleepy", "mask",
	"sunglasses", "confused", "worried", "open_mouth", "astonished", "flushed",
	"pleading_face", "cry", "sob", "scream", "angry", "rage", "clap", "pray",
	"+1", "-1", "ok_hand", "v", "wave", "raised_hands", "muscle", "point_right",
	"heart", "orange_heart", "yellow_heart", "green_heart", "blue_heart", "purple_heart",
	"broken_heart", "sparkles", "star", "fire", "tada", "balloon", "gift", "100",
	"white_check_mark", "x", "warning", "question", "exclamation", "bulb",
	"calendar", "phone", "email", "house", "hospital", "school", "sunny", "umbrella",
}

var pickerOnce = sync.OnceValue(func() []Emoji {
	table := definition.Github()
	out := make([]Emoji, 0, len(pickerShortNames))
	for _, name := range pickerShortNames {
		e, ok := table.Get(name)
		if !ok {
			continue
		}
		out = append(out, Emoji{ShortName: name, Glyph: string(e.Unicode)})
	}
	return out
})

// Picker returns the emoji offered by the picker, in display order.
func Picker() []Emoji {
	return pickerOnce()
}

// LookupEmoji resolves a GitHub shortname such as "smile" to its glyph.
func LookupEmoji(shortName string) (string, bool) {
	e, ok := definition.Github().Get(shortName)
	if !ok {
		return "", false
	}
	return string(e.Unicode), true
}

// FilterEmoji returns the picker entries whose short name contains term. A
// term naming an emoji missing from the picker puts that emoji first.
func FilterEmoji(term string) []Emoji {
	term = strings.Trim(strings.ToLower(strings.TrimSpace(term)), ":")
	picker := Picker()
	if term == "" {
		return picker
	}
	var out []Emoji
	exact := false
	for _, e := range picker {
		if strings.Contains(e.ShortName, term) {
			out = append(out, e)
			exact = exact || e.ShortName == term
		}
	}
	if !exact {
		if glyph, ok := LookupEmoji(term); ok {
			out = append([]Emoji{{ShortName: term, Glyph: glyph}}, out...)
		}
	}
	return out
}
