package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in  string
		out time.Month
		err error
	}{
		{"March", time.March, nil},
		{"march", time.March, nil},
		{"MARCH", time.March, nil},
		{" march ", time.March, nil},
		{"Mar", time.March, nil},
		{"3", time.March, nil},
		{"03", time.March, nil},
		{"12", time.December, nil},
		{"Sept", time.September, nil},
		{"january", time.January, nil},
		{"", 0, ErrMonthRequired},
		{"   ", 0, ErrMonthRequired},
		{"Marchh", 0, ErrInvalidMonth},
		{"13", 0, ErrInvalidMonth},
		{"0", 0, ErrInvalidMonth},
		{"foo", 0, ErrInvalidMonth},
	}
	for _, tc := range cases {
		got, err := ParseMonth(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			if !IsClientInput(err) {
				t.Fatalf("%q error should be client input: %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.out {
			t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestParseMonthAllNames(t *testing.T) {
	for mo := time.January; mo <= time.December; mo++ {
		got, err := ParseMonth(mo.String())
		if err != nil || got != mo {
			t.Fatalf("%s: got %v err=%v", mo, got, err)
		}
	}
}
