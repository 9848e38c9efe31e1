package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestTerminalConfirmer(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"", false}, // EOF declines
	}
	for _, tc := range cases {
		var out bytes.Buffer
		confirmer := newTerminalConfirmer(bufio.NewReader(strings.NewReader(tc.input)), &out)
		if got := confirmer.Confirm("clear it?"); got != tc.want {
			t.Fatalf("Confirm(%q) = %v, want %v", tc.input, got, tc.want)
		}
		if !strings.Contains(out.String(), "clear it?") {
			t.Fatalf("prompt not shown, got %q", out.String())
		}
	}
}

func TestTerminalNavigatorMentionsReturnRoute(t *testing.T) {
	var out bytes.Buffer
	nav := newTerminalNavigator(&out)

	nav.RedirectToLogin("/cart")
	if !strings.Contains(out.String(), "/cart") {
		t.Fatalf("expected return route in message, got %q", out.String())
	}

	out.Reset()
	nav.RedirectToLogin("")
	if !strings.Contains(out.String(), "login") {
		t.Fatalf("expected login hint, got %q", out.String())
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID(nil, "product id"); err == nil {
		t.Fatalf("missing argument must fail")
	}
	if _, err := parseID([]string{"abc"}, "product id"); err == nil {
		t.Fatalf("non-numeric argument must fail")
	}
	id, err := parseID([]string{"42"}, "product id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestPromptTrimsInput(t *testing.T) {
	var out bytes.Buffer
	a := &app{in: bufio.NewReader(strings.NewReader("  Ada Vendor  \n")), out: &out}

	value, err := a.prompt("name: ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "Ada Vendor" {
		t.Fatalf("expected trimmed value, got %q", value)
	}
}
