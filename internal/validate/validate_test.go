package validate_test

import (
	"strings"
	"testing"

	"bookineo/internal/validate"
)

func TestPasswordPolicy(t *testing.T) {
	cases := []struct {
		pw string
		ok bool
	}{
		{"Passw0rd", true},
		{"passw0rd", false}, // no uppercase
		{"PASSW0RD", false}, // no lowercase
		{"Password", false}, // no digit
		{"Pw0", false},      // too short
		{"Aa1" + strings.Repeat("x", 80), false}, // too long
	}
	for _, c := range cases {
		if got := validate.Password(c.pw); got != c.ok {
			t.Errorf("Password(%q) = %v, want %v", c.pw, got, c.ok)
		}
	}
}

func TestDurationDays(t *testing.T) {
	cases := []struct {
		n  int
		ok bool
	}{
		{1, true},
		{365, true},
		{0, false},
		{366, false},
		{-3, false},
	}
	for _, c := range cases {
		if got := validate.DurationDays(c.n); got != c.ok {
			t.Errorf("DurationDays(%d) = %v, want %v", c.n, got, c.ok)
		}
	}
}

func TestEmail(t *testing.T) {
	if _, ok := validate.Email("alice@bookineo.test"); !ok {
		t.Error("valid email rejected")
	}
	for _, bad := range []string{"", "nope", "a@b", "a b@c.d"} {
		if _, ok := validate.Email(bad); ok {
			t.Errorf("Email(%q) accepted", bad)
		}
	}
}

func TestPage(t *testing.T) {
	if p, s := validate.Page("", ""); p != 1 || s != 20 {
		t.Errorf("defaults = (%d,%d)", p, s)
	}
	if p, s := validate.Page("-2", "9999"); p != 1 || s != 100 {
		t.Errorf("clamps = (%d,%d)", p, s)
	}
	if p, s := validate.Page("3", "10"); p != 3 || s != 10 {
		t.Errorf("passthrough = (%d,%d)", p, s)
	}
}
