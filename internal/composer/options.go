package composer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matheus3301/tides/internal/remote"
)

// ErrAttachmentsUnsupported is returned when an attachment kind is chosen.
// Picking media from the local machine is left to external tools.
var ErrAttachmentsUnsupported = errors.New("attachments are not supported in the terminal client")

// ErrTemplateParams is returned when the parameters typed for a template do
// not match the number it declares.
var ErrTemplateParams = errors.New("wrong number of template parameters")

// ParamSeparator splits the values typed for a template's parameters.
const ParamSeparator = "|"

// Attachments lists the kinds offered by the attachments tray.
var Attachments = []string{"image", "document", "location", "video", "audio", "voice"}

// OptionKind names a list in the options tray.
type OptionKind int

const (
	OptionSpeedSends OptionKind = iota
	OptionTemplates
	OptionInteractive
)

func (k OptionKind) String() string {
	switch k {
	case OptionSpeedSends:
		return "Speed sends"
	case OptionTemplates:
		return "Templates"
	case OptionInteractive:
		return "Interactive messages"
	}
	return fmt.Sprintf("OptionKind(%d)", int(k))
}

// OptionKinds is the order the tray shows its lists in.
var OptionKinds = []OptionKind{OptionSpeedSends, OptionTemplates, OptionInteractive}

// TemplateSource lists what the options tray offers.
type TemplateSource interface {
	Templates(ctx context.Context, hsm bool) ([]remote.Template, error)
	InteractiveTemplates(ctx context.Context) ([]remote.InteractiveTemplate, error)
}

// Choice is one entry of an options tray list.
type Choice struct {
	Kind     OptionKind
	ID       string
	Label    string
	Body     string
	Template *remote.Template
}

// LoadChoices fetches the list for kind.
func LoadChoices(ctx context.Context, src TemplateSource, kind OptionKind) ([]Choice, error) {
	switch kind {
	case OptionSpeedSends, OptionTemplates:
		ts, err := src.Templates(ctx, kind == OptionTemplates)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", strings.ToLower(kind.String()), err)
		}
		out := make([]Choice, len(ts))
		for i := range ts {
			t := ts[i]
			out[i] = Choice{Kind: kind, ID: t.ID, Label: t.Label, Body: t.Body, Template: &t}
		}
		return out, nil
	case OptionInteractive:
		its, err := src.InteractiveTemplates(ctx)
		if err != nil {
			return nil, fmt.Errorf("load interactive messages: %w", err)
		}
		out := make([]Choice, len(its))
		for i, t := range its {
			out[i] = Choice{Kind: kind, ID: t.ID, Label: t.Label, Body: t.Label}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown option list %d", int(kind))
}

// FilterChoices keeps the entries whose label contains term, ignoring case.
func FilterChoices(choices []Choice, term string) []Choice {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return choices
	}
	var out []Choice
	for _, c := range choices {
		if strings.Contains(strings.ToLower(c.Label), term) {
			out = append(out, c)
		}
	}
	return out
}

// NeedsParams reports whether picking ch must ask for template parameters.
func (ch Choice) NeedsParams() bool {
	return ch.Kind == OptionTemplates && ch.Template != nil && ch.Template.NumberParameters > 0
}

// ParseTemplateParams splits text into the n values of a template's
// parameters, in order.
func ParseTemplateParams(text string, n int) ([]string, error) {
	var params []string
	if strings.TrimSpace(text) != "" {
		for _, p := range strings.Split(text, ParamSeparator) {
			params = append(params, strings.TrimSpace(p))
		}
	}
	if len(params) != n || slices.Contains(params, "") {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrTemplateParams, n, len(params))
	}
	return params, nil
}

// Apply puts a tray choice into the composer. Speed sends and interactive
// messages fill the text; HSM templates also attach the template to the next
// send. The options tray closes and focus returns to the text field.
func (c *Composer) Apply(ch Choice) {
	c.update(func(s *State) {
		s.Text = ch.Body
		s.Cursor = len([]rune(ch.Body))
		s.Template = nil
		s.TemplateParams = nil
		if ch.Kind == OptionTemplates && ch.Template != nil {
			t := *ch.Template
			s.Template = &t
		}
		s.Panel = PanelNone
		s.Focused = true
	})
}
