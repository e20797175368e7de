package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sotto/internal/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if wire.Keyring.HasIdentity() {
				return fmt.Errorf("identity already exists in %s", dir)
			}
			kp, err := crypto.GenerateKeyPair()
			if err != nil {
				return err
			}
			if err := wire.Keyring.SaveIdentity(passphrase, kp); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nFingerprint: %s\n", crypto.Fingerprint(kp.Public))
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := wire.Keyring.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(kp.Public))
			return nil
		},
	}
}
