package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name          string
	Base          lipgloss.Style
	Border        lipgloss.Color
	Header        lipgloss.Style
	Task          lipgloss.Style
	CompletedTask lipgloss.Style
	Focused       lipgloss.Style
	Urgent        lipgloss.Style
	Important     lipgloss.Style
	Normal        lipgloss.Style
	Work          lipgloss.Style
	Break         lipgloss.Style
	Celebration   lipgloss.Style
	Input         lipgloss.Style
	Dim           lipgloss.Style
	Highlight     lipgloss.Style
}

var Themes = map[string]Theme{
	"default": {
		Name:          "Default",
		Base:          lipgloss.NewStyle().Margin(1, 2),
		Border:        lipgloss.Color("63"),
		Header:        lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Task:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		CompletedTask: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		Focused:       lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Urgent:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Important:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Normal:        lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Work:          lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		Break:         lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		Celebration:   lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true),
		Input:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1).Width(50),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
	},
	"paper": {
		Name:          "Paper",
		Base:          lipgloss.NewStyle().Margin(1, 2),
		Border:        lipgloss.Color("252"),
		Header:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		Task:          lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		CompletedTask: lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true),
		Focused:       lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		Urgent:        lipgloss.NewStyle().Foreground(lipgloss.Color("167")).Bold(true),
		Important:     lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true),
		Normal:        lipgloss.NewStyle().Foreground(lipgloss.Color("109")),
		Work:          lipgloss.NewStyle().Foreground(lipgloss.Color("109")).Bold(true),
		Break:         lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true),
		Celebration:   lipgloss.NewStyle().Foreground(lipgloss.Color("108")).Bold(true),
		Input:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("252")).Padding(0, 1).Width(50),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	},
}

// CurrentTheme holds the currently active theme.
var CurrentTheme = Themes["default"]

func SetTheme(name string) {
	if t, ok := Themes[name]; ok {
		CurrentTheme = t
	}
}
