// Package main theme preference commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/flashmart/internal/theme"
)

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Display theme preference",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the stored theme",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(app.Theme.Current(context.Background()))
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [light|dark]",
		Short: "Set the theme",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t := theme.Theme(args[0])
			if t != theme.Light && t != theme.Dark {
				fmt.Fprintf(os.Stderr, "Error: theme must be light or dark, got %q\n", args[0])
				os.Exit(1)
			}
			if err := app.Theme.Set(context.Background(), t); err != nil {
				exitOnError(err)
			}
			fmt.Println(t)
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip between light and dark",
		Run: func(cmd *cobra.Command, args []string) {
			next, err := app.Theme.Toggle(context.Background())
			if err != nil {
				exitOnError(err)
			}
			fmt.Println(next)
		},
	}

	cmd.AddCommand(getCmd, setCmd, toggleCmd)
	return cmd
}
