package tui

import (
	"fmt"
	"strconv"
	"strings"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdDraw
	cmdMove
	cmdUndo
	cmdNew
	cmdStats
	cmdHelp
	cmdQuit
)

// command is one parsed input line. Move commands carry the source and
// target pile tokens plus how many cards to take off the source's top.
type command struct {
	kind  commandKind
	from  string
	to    string
	count int
}

// parseCommand splits an input line into a command. Pile tokens are kept
// as strings; whether they name real piles is checked when the move runs.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{kind: cmdNone}, nil
	}

	switch fields[0] {
	case "d", "draw":
		return bare(cmdDraw, fields)
	case "u", "undo":
		return bare(cmdUndo, fields)
	case "n", "new", "deal":
		return bare(cmdNew, fields)
	case "t", "stats":
		return bare(cmdStats, fields)
	case "h", "help", "?":
		return bare(cmdHelp, fields)
	case "q", "quit", "exit":
		return bare(cmdQuit, fields)
	case "m", "move":
		if len(fields) < 3 || len(fields) > 4 {
			return command{}, fmt.Errorf("move wants: m <from> <to> [count]")
		}
		cmd := command{kind: cmdMove, from: fields[1], to: fields[2], count: 1}
		if len(fields) == 4 {
			n, err := strconv.Atoi(fields[3])
			if err != nil || n < 1 {
				return command{}, fmt.Errorf("count must be a positive number, got %q", fields[3])
			}
			cmd.count = n
		}
		return cmd, nil
	}
	return command{}, fmt.Errorf("unknown command %q, h for help", fields[0])
}

func bare(kind commandKind, fields []string) (command, error) {
	if len(fields) > 1 {
		return command{}, fmt.Errorf("%s takes no arguments", fields[0])
	}
	return command{kind: kind}, nil
}
