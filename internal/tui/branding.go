package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pders01/kbsearch/internal/config"
)

const AppName = "kbsearch"

var LogoLines = []string{
	"██  ▄█ █████▄",
	"██▄██▀ ██▄▄█▀",
	"██▀██▄ ██▀▀█▄",
	"██  ▀█ █████▀",
}

const CompactLogo = `kb ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#FF6B6B"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	// Status colors
	WarningColor = lipgloss.Color("#FACC15")
	ViewedColor  = lipgloss.Color("#64748B")
	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
)

// Styled components. They are rebuilt by ApplyColors.
var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	SeparatorStyle     lipgloss.Style
	SelectedItemStyle  lipgloss.Style
	ViewedItemStyle    lipgloss.Style
	PublishedStyle     lipgloss.Style
	UnpublishedStyle   lipgloss.Style
	LabelStyle         lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	PanelStyle         lipgloss.Style
	DebugStyle         lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyColors overrides the palette with configured colors. Empty values
// keep the built-in color.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ViewedColor, c.Viewed)
	set(&WarningColor, c.Warning)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true)

	ViewedItemStyle = lipgloss.NewStyle().
		Foreground(ViewedColor)

	PublishedStyle = lipgloss.NewStyle().
		Foreground(SuccessColor).
		Bold(true)

	UnpublishedStyle = lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)

	LabelStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(WarningColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(AccentColor).
		PaddingLeft(1).
		MarginLeft(2)

	DebugStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Foreground(MutedColor).
		Padding(0, 1)
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner returns the boxed logo printed by the version command.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	tagline := "    Knowledge Base Search"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("%s %s", tagline, version)
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))
}
