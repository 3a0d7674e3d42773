package util

import (
	"strings"
	"time"
)

const (
	seeMorePadding  = 500
	zeroWidthSpace  = "\u200b"
	defaultTimeZone = "Asia/Seoul"
)

// SeeMore folds body under header: the header stays visible and the body is
// pushed behind the chat client's "see more" cut with zero-width padding.
// A duplicated header on the body's first line is dropped.
func SeeMore(header, body string) string {
	if strings.TrimSpace(body) == "" {
		return body
	}
	header = strings.TrimSpace(header)
	body = stripHeader(body, header)

	var b strings.Builder
	b.Grow(len(header) + seeMorePadding*len(zeroWidthSpace) + len(body) + 1)
	b.WriteString(header)
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	if !strings.HasPrefix(body, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(body)
	return b.String()
}

func stripHeader(text, header string) string {
	if header == "" {
		return text
	}
	for _, sep := range []string{"\r\n\r\n", "\n\n", "\r\n", "\n", ""} {
		if strings.HasPrefix(text, header+sep) {
			return strings.TrimPrefix(text, header+sep)
		}
	}
	return text
}

var kst = loadZone(defaultTimeZone, 9*60*60)

func loadZone(name string, offset int) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("KST", offset)
}

// FormatKST renders t in Korea time; the zero time renders as "-".
func FormatKST(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(kst).Format(layout)
}
