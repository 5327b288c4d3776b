package main

import (
	"context"
	"fmt"
	"os"

	"github.com/abdulachik/pushsignal/internal/app"
	"github.com/abdulachik/pushsignal/internal/notify"
	"github.com/abdulachik/pushsignal/internal/onesignal"
	"github.com/spf13/cobra"
)

// sendFlags mirrors the send command's flags.
type sendFlags struct {
	contents  map[string]string
	titles    map[string]string
	file      string
	playerIDs []string
	segments  []string
	options   string
	dryRun    bool
}

var sendOpts sendFlags

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a notification",
	Long: `Send a push notification to OneSignal.

Examples:
  pushsignal send --content en=Hello --title en=Hi --content fr=Bonjour
  pushsignal send --file message.json --player-id 1dd608f2-c6a1-11e3-851d-000c2940e62c
  pushsignal send --content en=Hello --options '{"url":"https://example.com"}'
  pushsignal send --content en=Hello --dry-run   # Print the payload only`,
	RunE: runSend,
}

func init() {
	f := sendCmd.Flags()
	f.StringToStringVar(&sendOpts.contents, "content", nil, "Message text per language (lang=text)")
	f.StringToStringVar(&sendOpts.titles, "title", nil, "Heading per language (lang=text)")
	f.StringVar(&sendOpts.file, "file", "", `JSON file of {"lang": {"title": "...", "content": "..."}}`)
	f.StringSliceVar(&sendOpts.playerIDs, "player-id", nil, "Target player ids instead of segments")
	f.StringSliceVar(&sendOpts.segments, "segment", nil, "Target segments (default All)")
	f.StringVar(&sendOpts.options, "options", "", "Extra delivery options as a JSON object")
	f.BoolVar(&sendOpts.dryRun, "dry-run", false, "Print the payload without sending")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	notification, err := buildNotification(sendOpts)
	if err != nil {
		return err
	}

	if err := cfg.ValidateForSending(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg, app.Options{DryRun: sendOpts.dryRun})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	result, err := a.Notifier.Send(ctx, notification)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.DryRun {
		fmt.Fprintln(out, "=== DRY RUN - Not sending ===")
		fmt.Fprintln(out, string(result.Payload))
		return nil
	}

	fmt.Fprintf(out, "Status: %d\n", result.StatusCode)
	fmt.Fprintf(out, "Response: %s\n", result.Body)
	if result.DeliveryID != "" {
		fmt.Fprintf(out, "Delivery: %s\n", result.DeliveryID)
	}
	return nil
}

// buildNotification turns flags into a notification. A --file replaces the
// --content/--title flags.
func buildNotification(flags sendFlags) (notify.Notification, error) {
	var n notify.Notification

	if flags.file != "" {
		raw, err := os.ReadFile(flags.file)
		if err != nil {
			return n, fmt.Errorf("read notification file: %w", err)
		}
		content, err := onesignal.ParseContent(raw)
		if err != nil {
			return n, fmt.Errorf("parse %s: %w", flags.file, err)
		}
		n.Messages = content
	} else {
		n.Messages = make(onesignal.Content, len(flags.contents))
		for lang, text := range flags.contents {
			n.Messages[lang] = onesignal.Message{Content: text}
		}
		for lang, title := range flags.titles {
			m := n.Messages[lang]
			m.Title = title
			n.Messages[lang] = m
		}
	}

	opts := onesignal.Options{}
	if flags.options != "" {
		parsed, err := onesignal.ParseOptions([]byte(flags.options))
		if err != nil {
			return n, fmt.Errorf("parse --options: %w", err)
		}
		opts = parsed
	}
	if len(flags.segments) > 0 {
		opts["included_segments"] = flags.segments
	}
	if len(flags.playerIDs) > 0 {
		opts["include_player_ids"] = flags.playerIDs
	}
	if len(opts) > 0 {
		n.Options = opts
	}

	return n, nil
}
