package core

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// monthsByName maps every accepted spelling to its month. Lookups are
// case-folded, so keys are stored folded.
var monthsByName = func() map[string]time.Month {
	m := make(map[string]time.Month, 36)
	for mo := time.January; mo <= time.December; mo++ {
		name := strings.ToLower(mo.String())
		m[name] = mo
		m[name[:3]] = mo
		m[strconv.Itoa(int(mo))] = mo
	}
	m["sept"] = time.September
	return m
}()

// ParseMonth resolves an English month name, its three-letter abbreviation
// or a number 1-12 to a time.Month. Anything else is rejected.
func ParseMonth(name string) (time.Month, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrMonthRequired
	}
	folded := cases.Fold().String(name)
	if mo, ok := monthsByName[folded]; ok {
		return mo, nil
	}
	// "03" style numerals
	if mo, ok := monthsByName[strings.TrimLeft(folded, "0")]; ok {
		return mo, nil
	}
	return 0, ErrInvalidMonth
}
