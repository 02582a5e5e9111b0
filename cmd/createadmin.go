package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ksfraser/WealthSystem-sub002/internal/authn"
	"github.com/ksfraser/WealthSystem-sub002/models"
)

var createAdminEmail string

// create-admin bootstraps the first administrator so invitations can be
// issued. Later accounts come through the invitation flow.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin [username]",
	Short: "Create an administrator account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()
		defer portalDB.Close()

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read password")
		}
		if len(password) < 8 {
			log.Fatal().Msg("password must be at least 8 characters")
		}

		passwordHash, err := authn.HashPassword(string(password))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash password")
		}

		user, err := portalDB.CreateUser(&models.User{
			Username:     args[0],
			Email:        createAdminEmail,
			PasswordHash: passwordHash,
			IsAdmin:      true,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create administrator")
		}

		fmt.Printf("Created administrator %s (%s)\n", user.Username, user.ID)
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&createAdminEmail, "email", "", "email address for the administrator")
	createAdminCmd.MarkFlagRequired("email")
}
