package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookineo/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'.,\-]{1,80}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 120 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a free-text search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (book/user/rental ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Password enforces the sign-up policy: 8-72 chars with at least one
// lowercase letter, one uppercase letter, and one digit.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
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

// DurationDays checks a rental duration against the accepted window.
func DurationDays(n int) bool {
	return n >= domain.MinRentalDays && n <= domain.MaxRentalDays
}

// Page clamps page/pageSize query values to sane defaults.
func Page(pageS, sizeS string) (page, size int) {
	page, _ = strconv.Atoi(strings.TrimSpace(pageS))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(strings.TrimSpace(sizeS))
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// Price parses a non-negative price filter value.
func Price(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// BirthDate accepts an ISO date (YYYY-MM-DD) not in the future.
func BirthDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01-02", s)
	if err != nil || t.After(time.Now()) {
		return "", false
	}
	return s, true
}
