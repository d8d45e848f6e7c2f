package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	MutedColor        tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableHeaderFg     tcell.Color
	TableHeaderBg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	CrumbActiveFg     tcell.Color
	CrumbActiveBg     tcell.Color
	CrumbInactiveFg   tcell.Color
	CrumbInactiveBg   tcell.Color
	MenuKeyColor      tcell.Color
	NumericKeyColor   tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	UnreadColor       tcell.Color
	InboundColor      tcell.Color
	OutboundColor     tcell.Color
	LinkColor         tcell.Color
	ErrorColor        tcell.Color
	FlashInfoColor    tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color
}

// DefaultTheme returns a dark theme with a teal accent.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorLightCyan,
		MutedColor:        tcell.ColorGray,
		BorderColor:       tcell.ColorTeal,
		BorderFocusColor:  tcell.ColorMediumTurquoise,
		TableHeaderFg:     tcell.ColorWhite,
		TableHeaderBg:     tcell.ColorBlack,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorMediumTurquoise,
		CrumbActiveFg:     tcell.ColorBlack,
		CrumbActiveBg:     tcell.ColorGold,
		CrumbInactiveFg:   tcell.ColorBlack,
		CrumbInactiveBg:   tcell.ColorTeal,
		MenuKeyColor:      tcell.ColorMediumTurquoise,
		NumericKeyColor:   tcell.ColorFuchsia,
		TitleColor:        tcell.ColorGold,
		CounterColor:      tcell.ColorPapayaWhip,
		UnreadColor:       tcell.ColorLimeGreen,
		InboundColor:      tcell.ColorLightCyan,
		OutboundColor:     tcell.ColorPaleGreen,
		LinkColor:         tcell.ColorDeepSkyBlue,
		ErrorColor:        tcell.ColorOrangeRed,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorTeal,
	}
}

// Tag returns the tview color tag name of c.
func Tag(c tcell.Color) string {
	return colorName(c)
}
