package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/finxray/finxray/internal/dashboard"
	"github.com/finxray/finxray/internal/report"
)

var (
	colorSuccess = lipgloss.Color("#00D787")
	colorError   = lipgloss.Color("#FF5F87")
	colorWarning = lipgloss.Color("#FFAF00")
	colorMuted   = lipgloss.Color("#888888")
)

var (
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleBold  = lipgloss.NewStyle().Bold(true)
)

func badge(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(color).
		Padding(0, 1).
		Render(text)
}

func verdictBadge(label report.VerdictLabel) string {
	switch label {
	case report.VerdictInvest:
		return badge(string(label), colorSuccess)
	case report.VerdictAvoid:
		return badge(string(label), colorError)
	default:
		return badge(string(label), colorWarning)
	}
}

func riskBadge(band dashboard.RiskBand) string {
	switch band {
	case dashboard.RiskHigh:
		return badge("HIGH RISK", colorError)
	case dashboard.RiskModerate:
		return badge("MODERATE RISK", colorWarning)
	default:
		return badge("LOW RISK", colorSuccess)
	}
}
