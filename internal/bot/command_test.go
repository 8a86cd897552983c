package bot

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Command
	}{
		{"/reset", CmdReset},
		{"/reset please", CmdReset},
		{"/tail", CmdTail},
		{"/gpt3", CmdFast},
		{"/gpt4", CmdCapable},
		{"/gpt4 now", CmdCapable},
		{"hello", CmdNone},
		{"reset", CmdNone},
		{"/unknown", CmdNone},
		{"", CmdNone},
		{"tell me about /reset", CmdNone}, // prefix match only
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Fatalf("Classify(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}
