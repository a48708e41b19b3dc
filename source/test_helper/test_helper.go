package test_helper

import (
	"testing"

	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/text"
)

// Auxiliary types and functions for testing the parser and evaluator.

type TestItem struct {
	Input string
	Want  string
}

// Runs F on the input of each test, and fails if F returns an error or anything other
// than what is wanted.
func RunTest(t *testing.T, tests []TestItem, F func(s string) (string, error)) {
	t.Helper()
	for _, test := range tests {
		if settings.SHOW_TESTS {
			println(text.BULLET + "Running test " + text.Emph(test.Input))
		}
		got, e := F(test.Input)
		if e != nil {
			t.Fatalf("Test failed with input %s | Error : %s", test.Input, e.Error())
		}
		if !(test.Want == got) {
			t.Fatalf(`Test failed with input %s | Wanted : %s | Got : %s.`, test.Input, test.Want, got)
		}
	}
}
