package validators

import (
	"net"
	"regexp"
	"strings"
	"time"
)

func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// ParseClock turns "HH:MM" into minutes since midnight.
func ParseClock(hm string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(hm))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// IsValidWindow reports whether start and end are clock times with start < end.
func IsValidWindow(start, end string) bool {
	s, ok1 := ParseClock(start)
	e, ok2 := ParseClock(end)
	return ok1 && ok2 && s < e
}
