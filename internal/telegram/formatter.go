package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/pfrederiksen/refsched/internal/match"
)

// maxMessageLen is the Bot API limit for one message text
const maxMessageLen = 4096

// FormatMatch formats a single match as a message block
func FormatMatch(m *match.Match, leagueNames map[string]string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("📅 %s\n", m.Kickoff.Format("Mon, 02.01.2006 15:04")))
	msg.WriteString(fmt.Sprintf("⚽ <b>%s</b>: %s\n", html.EscapeString(m.LeagueName(leagueNames)), html.EscapeString(m.Title())))

	if m.Venue != "" {
		msg.WriteString(fmt.Sprintf("📍 %s\n", html.EscapeString(m.Venue)))
	}

	for _, line := range m.StatusLines() {
		msg.WriteString(html.EscapeString(line))
		msg.WriteString("\n")
	}

	return msg.String()
}

// FormatChanges renders a diff as one or more messages, each within the
// Bot API length limit. An empty diff yields no messages.
func FormatChanges(diff *match.DiffResult, leagueNames map[string]string) []string {
	var blocks []string
	add := func(header string, matches []*match.Match) {
		if len(matches) == 0 {
			return
		}
		blocks = append(blocks, fmt.Sprintf("%s (%d)\n", header, len(matches)))
		for _, m := range matches {
			blocks = append(blocks, FormatMatch(m, leagueNames))
		}
	}

	add("🆕 <b>New assignments</b>", diff.New)
	add("🔄 <b>Changed</b>", diff.Changed)
	add("❌ <b>Cancelled</b>", diff.Removed)

	return pack(blocks)
}

// pack joins blocks into messages no longer than maxMessageLen.
// A single oversized block is sent on its own.
func pack(blocks []string) []string {
	var messages []string
	var current strings.Builder

	for _, b := range blocks {
		if current.Len() > 0 && current.Len()+1+len(b) > maxMessageLen {
			messages = append(messages, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(b)
	}

	if current.Len() > 0 {
		messages = append(messages, strings.TrimSpace(current.String()))
	}
	return messages
}
