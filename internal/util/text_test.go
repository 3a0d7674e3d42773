package util

import (
	"strings"
	"testing"
	"time"
)

func TestSeeMore(t *testing.T) {
	got := SeeMore("Recent games", "Recent games\n• #1 win")
	if !strings.HasPrefix(got, "Recent games"+zeroWidthSpace) {
		t.Fatalf("header not kept in front: %q", got[:20])
	}
	if !strings.HasSuffix(got, "\n• #1 win") {
		t.Fatalf("body missing")
	}
	if strings.Count(got, "Recent games") != 1 {
		t.Fatalf("duplicated header not stripped")
	}
	if strings.Count(got, zeroWidthSpace) != seeMorePadding {
		t.Fatalf("padding length mismatch")
	}
	if SeeMore("h", "  ") != "  " {
		t.Fatalf("blank body must pass through")
	}
}

func TestFormatKST(t *testing.T) {
	ts := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	if got := FormatKST(ts, "2006-01-02 15:04"); got != "2024-03-02 00:30" {
		t.Fatalf("FormatKST = %q", got)
	}
	if FormatKST(time.Time{}, time.RFC3339) != "-" {
		t.Fatalf("zero time should render as -")
	}
}
