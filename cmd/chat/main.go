package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gemini-relay/internal/client"
)

const connectErrorReply = "Error connecting to server."

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chat",
		Short:         "Talk to the Gemini relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("CHAT_SERVER")
	if server == "" {
		server = client.DefaultBaseURL
	}
	rootCmd.PersistentFlags().String("server", server, "relay base URL")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "per-message timeout")

	rootCmd.AddCommand(sendCmd(), replCmd())
	return rootCmd
}

func newClient(cmd *cobra.Command) (*client.Client, time.Duration, error) {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	c, err := client.New(server)
	return c, timeout, err
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, timeout, err := newClient(cmd)
			if err != nil {
				return err
			}
			return sendOne(cmd.Context(), c, timeout, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read messages from stdin, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, timeout, err := newClient(cmd)
			if err != nil {
				return err
			}
			return repl(cmd.Context(), c, timeout, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

type sender interface {
	Send(ctx context.Context, message string) (string, error)
}

func sendOne(ctx context.Context, s sender, timeout time.Duration, message string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := s.Send(ctx, message)
	if err != nil {
		fmt.Fprintf(out, "Bot: %s\n", connectErrorReply)
		return err
	}
	fmt.Fprintf(out, "Bot: %s\n", reply)
	return nil
}

// repl skips blank lines and keeps going after a failed message.
func repl(ctx context.Context, s sender, timeout time.Duration, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		fmt.Fprintf(out, "You: %s\n", message)
		if err := sendOne(ctx, s, timeout, message, out); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
	return scanner.Err()
}
