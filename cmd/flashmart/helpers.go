package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/joss/flashmart/internal/guard"
)

// exitOnError prints the error and exits. Session-expired notices take
// precedence so the user learns why the call was rejected.
func exitOnError(err error) {
	if app != nil && app.Session.ConsumeExpiredNotice() {
		fmt.Fprintln(os.Stderr, color.YellowString("Your session has expired. Please sign in again."))
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// checkRoute runs the navigation guard for a named route and exits with a
// redirect hint when access is denied.
func checkRoute(name string) {
	route, ok := app.Routes.Lookup(name)
	if !ok {
		return
	}
	switch app.Guard.Check(context.Background(), route) {
	case guard.RedirectToLogin:
		fmt.Fprintln(os.Stderr, "Please sign in first: flashmart login")
		os.Exit(1)
	case guard.RedirectToHome:
		fmt.Fprintln(os.Stderr, "Already signed in. Run 'flashmart logout' first.")
		os.Exit(1)
	}
}

// promptPassword reads a password without echo, falling back to plain
// reads when stdin is not a terminal (tests, pipes).
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
