package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks a yes/no question on stderr. "y" or "yes" accepts.
func Confirm(prompt string) bool {
	return confirm(os.Stdin, os.Stderr, StyleWarning.Render(prompt), false)
}

// ConfirmDanger guards destructive or real-value actions: only a typed
// "yes" accepts.
func ConfirmDanger(prompt string) bool {
	return confirm(os.Stdin, os.Stderr, StyleError.Render("⚠ "+prompt), true)
}

func confirm(in io.Reader, out io.Writer, prompt string, strict bool) bool {
	hint := "[y/N]"
	if strict {
		hint = "type yes to continue"
	}
	fmt.Fprintf(out, "%s %s: ", prompt, hint)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes":
		return true
	case "y":
		return !strict
	}
	return false
}
