package uci

import (
	"strings"

	"chess_uci/internal/domain"
)

func positionCommand(pos domain.Position) string {
	var sb strings.Builder
	sb.WriteString("position ")
	if pos.FEN == "" {
		sb.WriteString("startpos")
	} else {
		sb.WriteString("fen ")
		sb.WriteString(pos.FEN)
	}
	if len(pos.Moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(pos.Moves, " "))
	}
	return sb.String()
}

// setOptionCommand leaves out the value for button options.
func setOptionCommand(s domain.Setting) string {
	if s.Value == "" {
		return "setoption name " + s.Name
	}
	return "setoption name " + s.Name + " value " + s.Value
}

func goCommand(cmd domain.GoCommand) string {
	if cmd == nil {
		return "go infinite"
	}
	return "go " + cmd.Args()
}
