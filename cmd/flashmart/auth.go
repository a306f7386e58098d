// Package main authentication commands.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joss/flashmart/internal/session"
)

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the storefront",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("login")

			if password == "" {
				var err error
				password, err = promptPassword("Password")
				if err != nil {
					exitOnError(err)
				}
			}

			res, err := app.Session.Login(context.Background(), session.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				exitOnError(err)
			}

			name := res.User.Name
			if name == "" {
				name = res.User.Email
			}
			if pretty {
				fmt.Println(color.GreenString("Signed in as %s", name))
			} else {
				fmt.Printf("Signed in as %s\n", name)
			}
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a storefront account",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("register")

			if password == "" {
				var err error
				password, err = promptPassword("Password")
				if err != nil {
					exitOnError(err)
				}
				confirm, err := promptPassword("Confirm password")
				if err != nil {
					exitOnError(err)
				}
				if confirm != password {
					exitOnError(fmt.Errorf("passwords do not match"))
				}
			}

			res, err := app.Session.Register(context.Background(), session.RegisterRequest{
				Name:                 name,
				Email:                email,
				Password:             password,
				PasswordConfirmation: password,
			})
			if err != nil {
				exitOnError(err)
			}
			fmt.Printf("Account created for %s\n", res.User.Email)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.Session.Logout(context.Background()); err != nil {
				exitOnError(err)
			}
			fmt.Println("Signed out")
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Run: func(cmd *cobra.Command, args []string) {
			if !app.Session.IsAuthenticated() {
				fmt.Println("Not signed in")
				return
			}

			user := app.Session.CurrentUser()
			if user == nil {
				fmt.Println("Signed in (no stored profile)")
				return
			}
			fmt.Printf("  ID:     %s\n", user.ID)
			fmt.Printf("  Name:   %s\n", user.Name)
			fmt.Printf("  Email:  %s\n", user.Email)
		},
	}
}

func forgotPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password-reset OTP",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("forgot-password")

			msg, err := app.Session.ForgotPassword(context.Background(), session.ForgotPasswordRequest{Email: email})
			if err != nil {
				exitOnError(err)
			}
			fmt.Println(msg)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func verifyOTPCmd() *cobra.Command {
	var email, otp, password string
	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Verify the reset OTP and set a new password",
		Run: func(cmd *cobra.Command, args []string) {
			checkRoute("verify-otp")

			if password == "" {
				var err error
				password, err = promptPassword("New password")
				if err != nil {
					exitOnError(err)
				}
			}

			msg, err := app.Session.VerifyOTPResetPassword(context.Background(), session.VerifyOTPRequest{
				Email:                email,
				OTP:                  otp,
				Password:             password,
				PasswordConfirmation: password,
			})
			if err != nil {
				exitOnError(err)
			}
			fmt.Println(msg)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&otp, "otp", "o", "", "One-time code from the reset email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "New password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("otp")
	return cmd
}
