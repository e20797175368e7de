package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sotto/internal/client"
	"sotto/internal/domain"
	"sotto/internal/protocol/seal"
	"sotto/internal/relay"
)

// send <user id> <message>: seal and post one message.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <user id> <message>",
		Short: "Encrypt and send a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			state, err := wire.Authenticated(passphrase)
			if err != nil {
				return err
			}
			msg, err := state.Messenger.Send(cmd.Context(), domain.UserID(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Printf("sent %s\n", msg.ID)
			return nil
		},
	}
}

// messages <user id>: fetch and decrypt the conversation.
func messagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages <user id>",
		Short: "Fetch and decrypt a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			state, err := wire.Authenticated(passphrase)
			if err != nil {
				return err
			}
			hist, err := state.Messenger.History(cmd.Context(), domain.UserID(args[0]))
			if err != nil {
				return err
			}
			for _, m := range hist {
				who := "them"
				if m.SenderID == state.User.ID {
					who = "me"
				}
				ts := time.UnixMilli(m.CreatedAt).Format(time.RFC3339)
				fmt.Printf("%s  %-4s  %s\n", ts, who, m.Text)
			}
			return nil
		},
	}
}

// listen: stay connected to the relay and decrypt message
// notifications as they arrive.
func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Print live message notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			state, err := wire.Authenticated(passphrase)
			if err != nil {
				return err
			}
			rc, err := relay.Dial(cmd.Context(), wire.Config.WSURL(), state.Token)
			if err != nil {
				return err
			}
			defer rc.Close()

			fmt.Println("listening; Ctrl-C to stop")
			for sig := range rc.Signals() {
				if sig.Type != domain.SignalNewMessage || sig.Message == nil {
					continue
				}
				k, err := state.Messenger.SharedWith(cmd.Context(), sig.Message.SenderID)
				if err != nil {
					fmt.Printf("from %s: <%v>\n", sig.Message.SenderID, err)
					continue
				}
				pt, err := seal.Open(k, sig.Message.Ciphertext, sig.Message.Nonce)
				if err != nil {
					fmt.Printf("from %s: %s\n", sig.Message.SenderID, client.DecryptionPlaceholder)
					continue
				}
				fmt.Printf("from %s: %s\n", sig.Message.SenderID, pt)
			}
			return nil
		},
	}
}
