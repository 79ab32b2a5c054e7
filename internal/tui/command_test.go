package tui

import "testing"

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		want command
	}{
		{"d", command{kind: cmdDraw}},
		{"draw", command{kind: cmdDraw}},
		{"DRAW", command{kind: cmdDraw}},
		{"  u  ", command{kind: cmdUndo}},
		{"undo", command{kind: cmdUndo}},
		{"n", command{kind: cmdNew}},
		{"deal", command{kind: cmdNew}},
		{"t", command{kind: cmdStats}},
		{"stats", command{kind: cmdStats}},
		{"h", command{kind: cmdHelp}},
		{"?", command{kind: cmdHelp}},
		{"q", command{kind: cmdQuit}},
		{"exit", command{kind: cmdQuit}},
		{"", command{kind: cmdNone}},
		{"   ", command{kind: cmdNone}},
		{"m w t3", command{kind: cmdMove, from: "w", to: "t3", count: 1}},
		{"move t0 t6 3", command{kind: cmdMove, from: "t0", to: "t6", count: 3}},
		{"M W F2", command{kind: cmdMove, from: "w", to: "f2", count: 1}},
	}
	for _, tc := range cases {
		got, err := parseCommand(tc.line)
		if err != nil {
			t.Errorf("parseCommand(%q) failed: %v", tc.line, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseCommand(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestParseCommandRejectsBadInput(t *testing.T) {
	lines := []string{
		"xyzzy",
		"m w",
		"m w t3 2 extra",
		"m w t3 0",
		"m w t3 -1",
		"m w t3 two",
		"draw now",
		"quit please",
	}
	for _, line := range lines {
		if _, err := parseCommand(line); err == nil {
			t.Errorf("parseCommand(%q) should fail", line)
		}
	}
}
