// Package render maps chat messages to what the terminal shows for them and
// to the action taken when one is activated.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matheus3301/tides/internal/remote"
)

// Variant is the way a message is displayed.
type Variant int

const (
	VariantFallback Variant = iota
	VariantText
	VariantImage
	VariantVideo
	VariantAudio
	VariantSticker
	VariantDocument
	VariantLocation
	VariantQuickReply
)

var variantNames = map[Variant]string{
	VariantFallback:   "fallback",
	VariantText:       "text",
	VariantImage:      "image",
	VariantVideo:      "video",
	VariantAudio:      "audio",
	VariantSticker:    "sticker",
	VariantDocument:   "document",
	VariantLocation:   "location",
	VariantQuickReply: "quick_reply",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return "Variant(" + strconv.Itoa(int(v)) + ")"
}

var variantByKind = map[string]Variant{
	remote.KindText:       VariantText,
	remote.KindImage:      VariantImage,
	remote.KindVideo:      VariantVideo,
	remote.KindAudio:      VariantAudio,
	remote.KindSticker:    VariantSticker,
	remote.KindDocument:   VariantDocument,
	remote.KindLocation:   VariantLocation,
	remote.KindQuickReply: VariantQuickReply,
}

// Option is one quick reply button.
type Option struct {
	Index int
	Title string
}

// Rendering is the display form of one message.
type Rendering struct {
	Variant  Variant
	Body     string
	MediaURL string
	Caption  string
	// Link is what activating the message opens, empty when nothing.
	Link     string
	Options  []Option
	Outbound bool
}

// ErrNoLink is returned by Activate for a document or location message that
// carries nothing to open.
var ErrNoLink = errors.New("message has nothing to open")

// Render maps a message. Kinds it does not know render as a fallback line.
func Render(msg remote.Message) Rendering {
	r := Rendering{
		Body:     msg.Body,
		Outbound: msg.Flow == remote.FlowOutbound,
	}
	v, ok := variantByKind[msg.Type]
	if !ok {
		r.Variant = VariantFallback
		if r.Body == "" {
			r.Body = "[" + fallbackKind(msg.Type) + " message]"
		}
		return r
	}
	r.Variant = v

	switch v {
	case VariantImage, VariantVideo, VariantAudio, VariantSticker, VariantDocument:
		if msg.Media != nil {
			r.MediaURL = msg.Media.URL
			r.Caption = msg.Media.Caption
		}
		if v == VariantDocument {
			r.Link = r.MediaURL
		}
	case VariantLocation:
		if msg.Location != nil {
			r.Link = MapsURL(msg.Location.Latitude, msg.Location.Longitude)
		}
	case VariantQuickReply:
		prompt, opts, err := QuickReply(msg.InteractiveContent)
		if err == nil {
			if prompt != "" {
				r.Body = prompt
			}
			r.Options = opts
		}
	}
	return r
}

func fallbackKind(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return strings.ToLower(kind)
}

// MapsURL builds the map search link for a coordinate pair.
func MapsURL(lat, lng float64) string {
	return "https://www.google.com/maps/search/?api=1&query=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// Activate performs the action of selecting msg: documents open their URL
// and locations open a map. Every other kind does nothing.
func Activate(msg remote.Message, o Opener) error {
	r := Render(msg)
	switch r.Variant {
	case VariantDocument, VariantLocation:
		if r.Link == "" {
			return ErrNoLink
		}
		return o.Open(r.Link)
	}
	return nil
}

type interactiveContent struct {
	Type    string `json:"type"`
	Content struct {
		Type    string `json:"type"`
		Text    string `json:"text"`
		Header  string `json:"header"`
		Caption string `json:"caption"`
	} `json:"content"`
	Options []struct {
		Type  string `json:"type"`
		Title string `json:"title"`
	} `json:"options"`
}

// QuickReply decodes interactive content into its prompt and options, keeping
// the options in source order. The API sometimes sends the document as a
// JSON-encoded string; both forms are accepted.
func QuickReply(raw json.RawMessage) (string, []Option, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil, errors.New("empty interactive content")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", nil, fmt.Errorf("decode interactive content: %w", err)
		}
		raw = json.RawMessage(s)
	}
	var ic interactiveContent
	if err := json.Unmarshal(raw, &ic); err != nil {
		return "", nil, fmt.Errorf("decode interactive content: %w", err)
	}
	prompt := ic.Content.Text
	if ic.Content.Header != "" && prompt != "" {
		prompt = ic.Content.Header + "\n" + prompt
	} else if prompt == "" {
		prompt = ic.Content.Header
	}
	opts := make([]Option, 0, len(ic.Options))
	for _, o := range ic.Options {
		opts = append(opts, Option{Index: len(opts), Title: o.Title})
	}
	return prompt, opts, nil
}

// Summary is a single line describing r, used for list rows and plain output.
func (r Rendering) Summary() string {
	switch r.Variant {
	case VariantText, VariantFallback:
		return r.Body
	case VariantQuickReply:
		titles := make([]string, len(r.Options))
		for i, o := range r.Options {
			titles[i] = "[" + o.Title + "]"
		}
		return strings.TrimSpace(r.Body + " " + strings.Join(titles, " "))
	case VariantLocation:
		return "[location] " + r.Link
	}
	label := "[" + r.Variant.String() + "]"
	if r.Caption != "" {
		label += " " + r.Caption
	} else if r.Body != "" {
		label += " " + r.Body
	}
	if r.MediaURL != "" {
		label += " " + r.MediaURL
	}
	return label
}
