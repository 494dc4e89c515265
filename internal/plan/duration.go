package plan

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRe  = regexp.MustCompile(`^(?:(\d+):)?(\d+):(\d{1,2}(?:\.\d+)?)$`)
	amountRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(s|sec|secs|second|seconds|m|min|mins|minute|minutes)?$`)
)

// ParseDuration reads the Duration directive. It accepts bare seconds ("30"),
// worded units ("30 sec", "2 minutes"), clock notation ("1:30") and Go
// durations ("1m30s"). The result is rounded to milliseconds; non-positive
// values are rejected.
func ParseDuration(raw string) (int64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return 0, false
	}

	var seconds float64
	switch {
	case clockRe.MatchString(s):
		m := clockRe.FindStringSubmatch(s)
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		sec, _ := strconv.ParseFloat(m[3], 64)
		seconds = float64(h*3600+mins*60) + sec
	case amountRe.MatchString(s):
		m := amountRe.FindStringSubmatch(s)
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		if strings.HasPrefix(m[2], "m") {
			n *= 60
		}
		seconds = n
	default:
		d, err := time.ParseDuration(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return 0, false
		}
		seconds = d.Seconds()
	}

	ms := int64(math.Round(seconds * 1000))
	if ms <= 0 {
		return 0, false
	}
	return ms, true
}
