package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/courier"
	"github.com/dmitrymomot/courier/pkg/notify"
	"github.com/dmitrymomot/courier/pkg/transport"
)

type handlerInfo struct {
	Code    string `json:"code"`
	Event   string `json:"event"`
	Preview bool   `json:"preview"`
}

func newHandlersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "handlers",
		Short: "List registered email handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runHandlers(cfg.Courier, asJSON, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func runHandlers(cfg courier.Config, asJSON bool, w io.Writer) error {
	// Listing needs the registry only; templates come from the embedded set.
	cfg.Queue = courier.QueueInline
	cfg.Templates = courier.TemplatesEmbedded
	cfg.DevMode = false

	c, err := courier.New(cfg, courier.WithTransportSource(transport.Static(transport.None{})))
	if err != nil {
		return err
	}
	list := describe(c.Registry().Handlers())

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tEVENT\tPREVIEW")
	for _, h := range list {
		preview := "no"
		if h.Preview {
			preview = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Code, h.Event, preview)
	}
	return tw.Flush()
}

func describe(handlers []notify.Handler) []handlerInfo {
	out := make([]handlerInfo, 0, len(handlers))
	for _, h := range handlers {
		_, ok := h.MockEvent()
		out = append(out, handlerInfo{
			Code:    h.Code(),
			Event:   h.EventType().String(),
			Preview: ok,
		})
	}
	return out
}
