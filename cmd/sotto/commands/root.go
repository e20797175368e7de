package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sotto/internal/app"
)

var (
	dir        string
	passphrase string
	serverURL  string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "sotto",
		Short: "End-to-end encrypted messaging and calls CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				dir = filepath.Join(home, ".sotto")
			}
			w, err := app.NewWire(app.Config{Dir: dir, ServerURL: serverURL})
			if err != nil {
				return err
			}
			wire = w
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dir, "dir", "", "config dir (default ~/.sotto)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity key")
	root.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:4000", "server base URL")

	root.AddCommand(
		initCmd(), fingerprintCmd(),
		registerCmd(), loginCmd(), whoamiCmd(), usersCmd(),
		sendCmd(), messagesCmd(), listenCmd(),
		callCmd(), answerCmd(),
	)
	return root.Execute()
}
