package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/courier"
	"github.com/dmitrymomot/courier/pkg/logger"
	"github.com/dmitrymomot/courier/pkg/transport"
)

type previewFormat string

const (
	previewHTML previewFormat = "html"
	previewText previewFormat = "text"
	previewJSON previewFormat = "json"
)

type previewFlags struct {
	format string
	out    string
}

func newPreviewCmd() *cobra.Command {
	var flags previewFlags

	cmd := &cobra.Command{
		Use:   "preview <code>",
		Short: "Render a handler's mock event",
		Long: `Renders the email the handler registered under <code> would send for its
mock event, using the configured template source. Nothing is sent and no queue
is used.

Examples:
  courier preview order-confirmation
  courier preview password-reset --format text
  courier preview order-shipped --out shipped.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if flags.out != "" {
				f, err := os.Create(flags.out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runPreview(cmd.Context(), cfg.Courier, args[0], previewFormat(flags.format), w)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", string(previewHTML), "output format: html, text or json")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

func runPreview(ctx context.Context, cfg courier.Config, code string, format previewFormat, w io.Writer) error {
	switch format {
	case previewHTML, previewText, previewJSON:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	cfg.Queue = courier.QueueInline
	cfg.DevMode = false

	log := logger.NewNope()
	res, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer res.close(ctx)

	opts := append(res.options(), courier.WithTransportSource(transport.Static(transport.None{})))
	c, err := courier.New(cfg, opts...)
	if err != nil {
		return err
	}

	r, err := c.Preview(ctx, code)
	if err != nil {
		return err
	}

	switch format {
	case previewText:
		_, err = fmt.Fprintf(w, "From: %s\nTo: %s\nSubject: %s\n\n%s\n", r.Email.From, r.Job.Recipient, r.Email.Subject, r.Email.Text)
	case previewJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(map[string]string{
			"code":    code,
			"from":    r.Email.From,
			"to":      r.Job.Recipient,
			"subject": r.Email.Subject,
			"html":    r.Email.HTML,
			"text":    r.Email.Text,
		})
	default:
		_, err = io.WriteString(w, r.Email.HTML)
	}
	return err
}
