// Package main provides the flashmart CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/flashmart/internal/config"
)

var (
	version = "0.1.0"
	app     *App
	pretty  = true
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flashmart",
		Short: "Flash-sale storefront client",
		Long: `flashmart: terminal client for the flash-sale storefront.

Browse the marketplace, manage your cart, submit checkouts, and run your
seller catalog, all against the storefront API. Sign in with
'flashmart login'; state lives under ~/.flashmart.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			plain, _ := cmd.Flags().GetBool("plain")
			pretty = !plain && !config.Env().NoColor

			var err error
			app, err = newApp()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.Close()
			}
		},
	}

	rootCmd.PersistentFlags().Bool("plain", false, "Disable colored output")
	rootCmd.Version = version

	rootCmd.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		forgotPasswordCmd(),
		verifyOTPCmd(),
		productsCmd(),
		cartCmd(),
		checkoutCmd(),
		ordersCmd(),
		themeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
