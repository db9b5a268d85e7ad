package main

import (
	"testing"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/mood"
)

func TestParseIDs(t *testing.T) {
	got, err := parseIDs("3, 1,2")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Errorf("parseIDs() = %v", got)
	}
	if got, _ := parseIDs(""); got != nil {
		t.Errorf("parseIDs(\"\") = %v, want nil", got)
	}
	if _, err := parseIDs("1,x"); !core.IsInvalidInput(err) {
		t.Errorf("parseIDs(bad) err = %v", err)
	}
}

func TestParseMood(t *testing.T) {
	q, err := parseMood("Happy=8, calm=6,dark=20")
	if err != nil {
		t.Fatal(err)
	}
	if q.Vector[mood.Happy] != 8 || q.Vector[mood.Calm] != 6 || q.Vector[mood.Dark] != mood.MaxValue {
		t.Errorf("parseMood() = %v", q.Vector)
	}
	for _, bad := range []string{"happy", "happy=lots"} {
		if _, err := parseMood(bad); !core.IsInvalidInput(err) {
			t.Errorf("parseMood(%q) err = %v, want INVALID_INPUT", bad, err)
		}
	}
}
