package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/statusdeck/statusdeck/internal/chat/discord"
	"github.com/statusdeck/statusdeck/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Embed colors per system status.
const (
	ColorOperational = 0x2ECC71
	ColorDegraded    = 0xF1C40F
	ColorOutage      = 0xE74C3C
	ColorInfo        = 0x3498DB
)

// defaultGroup labels services that have no group of their own.
const defaultGroup = "General"

var statusGlyphs = map[domain.ServiceStatus]string{
	domain.ServiceStatusOperational:   "\U0001F7E2", // green circle
	domain.ServiceStatusDegraded:      "\U0001F7E1", // yellow circle
	domain.ServiceStatusPartialOutage: "\U0001F7E0", // orange circle
	domain.ServiceStatusMajorOutage:   "\U0001F534", // red circle
	domain.ServiceStatusMaintenance:   "\U0001F527", // wrench
}

var titleCaser = cases.Title(language.English)

// statusLabel renders a machine status as a human label, e.g.
// "partial_outage" -> "Partial Outage".
func statusLabel(status domain.ServiceStatus) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}

func systemStatusLabel(status domain.SystemStatus) string {
	return titleCaser.String(string(status))
}

// SystemStatusColor returns the embed color for an aggregate status.
func SystemStatusColor(status domain.SystemStatus) int {
	switch status {
	case domain.SystemStatusOutage:
		return ColorOutage
	case domain.SystemStatusDegraded:
		return ColorDegraded
	default:
		return ColorOperational
	}
}

// BuildLiveStatusEmbed renders the live status message: one field per
// service group, one line per service with its glyph and label. Group
// order follows the (already ordered) service list.
func BuildLiveStatusEmbed(services []domain.Service, aggregate domain.SystemStatus, now time.Time) discord.Embed {
	embed := discord.Embed{
		Title:       "System Status",
		Description: fmt.Sprintf("Overall: **%s**", systemStatusLabel(aggregate)),
		Color:       SystemStatusColor(aggregate),
		Footer:      &discord.EmbedFooter{Text: "Updated"},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}

	groupOrder := make([]string, 0)
	lines := make(map[string][]string)

	for _, svc := range services {
		group := svc.Group
		if group == "" {
			group = defaultGroup
		}
		if _, seen := lines[group]; !seen {
			groupOrder = append(groupOrder, group)
		}

		glyph, ok := statusGlyphs[svc.Status]
		if !ok {
			glyph = "⚪" // white circle
		}
		line := fmt.Sprintf("%s **%s** — %s", glyph, svc.Name, statusLabel(svc.Status))
		lines[group] = append(lines[group], line)
	}

	for _, group := range groupOrder {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  group,
			Value: strings.Join(lines[group], "\n"),
		})
	}

	return embed
}

// BuildAlertEmbed renders the change alert posted when the aggregate
// status degrades.
func BuildAlertEmbed(prev, current domain.SystemStatus, now time.Time) discord.Embed {
	return discord.Embed{
		Title: "System status changed",
		Description: fmt.Sprintf("Status went from **%s** to **%s**.",
			systemStatusLabel(prev), systemStatusLabel(current)),
		Color:     SystemStatusColor(current),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// BuildAnnouncementEmbed renders an admin-triggered announcement.
func BuildAnnouncementEmbed(title, content string, color int, now time.Time) discord.Embed {
	if color == 0 {
		color = ColorInfo
	}
	return discord.Embed{
		Title:       title,
		Description: content,
		Color:       color,
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}
