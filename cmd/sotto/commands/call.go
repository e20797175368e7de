package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sotto/internal/call"
	"sotto/internal/domain"
	"sotto/internal/relay"
)

// call <user id>: place an encrypted voice call. With no capture
// device the CLI streams silence frames; the point is that whatever it
// streams is sealed per frame, and whatever arrives is verified before
// it is counted.
func callCmd() *cobra.Command {
	var insecure bool
	cmd := &cobra.Command{
		Use:   "call <user id>",
		Short: "Start an encrypted voice call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), domain.UserID(args[0]), true, insecure)
		},
	}
	cmd.Flags().BoolVar(&insecure, "no-frame-crypto", false, "run the media path without the frame layer")
	return cmd
}

// answer <user id>: wait for that user's offer and answer it.
func answerCmd() *cobra.Command {
	var insecure bool
	cmd := &cobra.Command{
		Use:   "answer <user id>",
		Short: "Answer an incoming voice call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), domain.UserID(args[0]), false, insecure)
		},
	}
	cmd.Flags().BoolVar(&insecure, "no-frame-crypto", false, "run the media path without the frame layer")
	return cmd
}

func runCall(parent context.Context, peer domain.UserID, offer, insecure bool) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	state, err := wire.Authenticated(passphrase)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shared, err := state.Messenger.SharedWith(ctx, peer)
	if err != nil {
		return err
	}

	rc, err := relay.Dial(ctx, wire.Config.WSURL(), state.Token)
	if err != nil {
		return err
	}
	defer rc.Close()

	mic := call.NewSilenceSource()
	defer mic.Close()
	speaker := &call.CountingSink{}

	sess, err := call.New(call.Config{
		Peer:          peer,
		Shared:        shared,
		Signals:       rc,
		Mic:           mic,
		Speaker:       speaker,
		NoFrameCrypto: insecure,
	})
	if err != nil {
		return err
	}
	defer sess.End()

	if st := sess.State(); !st.Encrypted() {
		fmt.Printf("warning: %s\n", st.Capability())
	}

	if offer {
		if err := sess.Offer(ctx); err != nil {
			return err
		}
		fmt.Printf("calling %s; Ctrl-C to hang up\n", peer)
	} else {
		fmt.Printf("waiting for a call from %s; Ctrl-C to stop\n", peer)
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("call ended: %d frames received, %d dropped\n",
				speaker.Frames(), sess.DroppedFrames())
			return nil
		case sig, ok := <-rc.Signals():
			if !ok {
				return fmt.Errorf("signaling connection lost")
			}
			if err := sess.HandleSignal(ctx, sig); err != nil {
				return err
			}
		}
	}
}
