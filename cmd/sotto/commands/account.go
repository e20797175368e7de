package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sotto/internal/crypto"
	"sotto/internal/keyring"
)

// register <phone> <display name>: create the server account and
// publish the identity public key to the directory.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <phone> <display name>",
		Short: "Create an account and publish your public key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			kp, err := wire.Keyring.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			res, err := wire.API.Register(cmd.Context(), args[0], args[1], kp.Public)
			if err != nil {
				return err
			}
			if err := wire.Keyring.SaveSession(keyring.StoredSession{User: res.User, Token: res.Token}); err != nil {
				return err
			}
			fmt.Printf("Registered as %s (%s)\n", res.User.DisplayName, res.User.ID)
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <phone>",
		Short: "Re-authenticate an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.API.Login(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := wire.Keyring.SaveSession(keyring.StoredSession{User: res.User, Token: res.Token}); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", res.User.DisplayName, res.User.ID)
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := wire.Keyring.LoadSession()
			if err != nil {
				return err
			}
			wire.API.Token = sess.Token
			user, err := wire.API.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", user.ID, user.Phone, user.DisplayName)
			return nil
		},
	}
}

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the user directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := wire.Keyring.LoadSession()
			if err != nil {
				return err
			}
			wire.API.Token = sess.Token
			users, err := wire.API.Users(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				fp := ""
				if pub, err := crypto.ParsePublicKey(u.PublicKey); err == nil {
					fp = crypto.Fingerprint(pub)
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", u.ID, u.Phone, u.DisplayName, fp)
			}
			return nil
		},
	}
}
