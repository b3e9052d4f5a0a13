// ABOUTME: Local account CLI commands
// ABOUTME: Register, login, logout and whoami against the stored user table
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sustentalski/salescrm/crm"
)

// stdin is where prompts read from; tests replace it.
var stdin io.Reader = os.Stdin

var (
	lines     *bufio.Reader
	linesFrom io.Reader
)

// lineReader buffers stdin once so consecutive prompts do not drop input.
func lineReader() *bufio.Reader {
	if lines == nil || linesFrom != stdin {
		lines = bufio.NewReader(stdin)
		linesFrom = stdin
	}
	return lines
}

// RegisterCommand creates a user and logs them in.
func RegisterCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "Password (prompted when omitted)")
	fullName := fs.String("name", "", "Full name (required)")
	cep := fs.String("cep", "", "CEP or city (required)")
	cpf := fs.String("cpf", "", "CPF (required)")
	email := fs.String("email", "", "Email (required)")
	_ = fs.Parse(args)

	pw := *password
	confirm := ""
	if pw == "" {
		var err error
		if pw, err = readPassword("Senha: "); err != nil {
			return err
		}
		if confirm, err = readPassword("Confirmar senha: "); err != nil {
			return err
		}
	}

	u, err := state.Register(crm.Registration{
		Username:  *username,
		Password:  pw,
		Confirm:   confirm,
		FullName:  *fullName,
		CepOrCity: *cep,
		CPF:       *cpf,
		Email:     *email,
	})
	if err != nil {
		return err
	}

	printf("✓ Registered and logged in as %s\n", u.Username)
	return nil
}

// LoginCommand starts a session.
func LoginCommand(state *crm.State, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	password := fs.String("password", "", "Password (prompted when omitted)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("username required")
	}

	pw := *password
	if pw == "" {
		var err error
		if pw, err = readPassword("Senha: "); err != nil {
			return err
		}
	}

	u, err := state.Login(fs.Arg(0), pw)
	if err != nil {
		return err
	}
	printf("✓ Logged in as %s\n", u.Username)
	return nil
}

// LogoutCommand ends the session.
func LogoutCommand(state *crm.State, args []string) error {
	state.Logout()
	printLine("✓ Logged out")
	return nil
}

// WhoamiCommand prints the logged-in user.
func WhoamiCommand(state *crm.State, args []string) error {
	u, err := state.CurrentUser()
	if err != nil {
		return err
	}
	printf("%s\n", u.Username)
	if u.FullName != "" {
		printf("  Name:  %s\n", u.FullName)
	}
	if u.Email != "" {
		printf("  Email: %s\n", u.Email)
	}
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(prompt string) (string, error) {
	printf("%s", prompt)
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		printLine()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := lineReader().ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
