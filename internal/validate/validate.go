package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail     = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID        = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUsername  = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)
	reMinecraft = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)
	reSlug      = regexp.MustCompile(`^[a-z0-9-]{1,80}$`)
	reDay       = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	reClock     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Username follows Minecraft account rules: 3-16 word characters.
func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

func MinecraftName(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reMinecraft.MatchString(s)
}

// ID validates a simple resource identifier (product/event/post ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reSlug.MatchString(s)
}

// Day validates a YYYY-MM-DD calendar date string.
func Day(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reDay.MatchString(s)
}

// Clock validates an HH:mm time string.
func Clock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reClock.MatchString(s)
}

// Qty clamps a cart quantity into [1,50].
func Qty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// Password enforces length plus mixed character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// Title validates a displayable title with a reasonable max length.
func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}
