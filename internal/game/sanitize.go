package game

import (
	"strings"
	"unicode"
)

const (
	DefaultRoomID = "lobby"
	DefaultName   = "Player"
	MaxRoomIDLen  = 24
	MaxNameLen    = 20
	MaxChatLen    = 120
)

// SanitizeRoomID keeps ASCII letters, digits and ._- up to 24 characters.
func SanitizeRoomID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == MaxRoomIDLen {
			break
		}
		if isASCIIAlnum(r) || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultRoomID
	}
	return b.String()
}

// SanitizeName keeps letters, digits, spaces and ._- up to 20 runes.
func SanitizeName(raw string) string {
	filtered := make([]rune, 0, len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '.' || r == '_' || r == '-' {
			filtered = append(filtered, r)
		}
	}
	name := strings.TrimSpace(string(filtered))
	if runes := []rune(name); len(runes) > MaxNameLen {
		name = strings.TrimSpace(string(runes[:MaxNameLen]))
	}
	if name == "" {
		return DefaultName
	}
	return name
}

func StatsKey(name string) string {
	return strings.ToLower(name)
}

// SanitizeChat trims text and cuts it to 120 runes. Empty means nothing to send.
func SanitizeChat(raw string) string {
	text := strings.TrimSpace(raw)
	if runes := []rune(text); len(runes) > MaxChatLen {
		text = strings.TrimSpace(string(runes[:MaxChatLen]))
	}
	return text
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
