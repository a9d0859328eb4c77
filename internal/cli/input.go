package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are seams so tests never touch the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// promptToken asks for the API token without echo
func promptToken(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", fmt.Errorf("no token: set CIRRUS_TOKEN or run from a terminal")
	}

	if _, err := fmt.Fprint(w, "API token: "); err != nil {
		return "", err
	}
	token, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(token)), nil
}
