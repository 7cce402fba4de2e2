// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PageLens Contributors

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pagelens/pagelens/internal/orchestrator"
	lenserr "github.com/pagelens/pagelens/pkg/errors"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show service and provider status",
		Long:  "Query the running service and display per-provider health, capabilities, and response times.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", defaultAddress, "service address to check")
	cmd.Flags().Bool("refresh", false, "force a health probe before reporting")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	refresh, _ := cmd.Flags().GetBool("refresh")
	out := cmd.OutOrStdout()

	client := newServiceClient(addr)

	var body struct {
		Providers []orchestrator.ProviderInfo `json:"providers"`
	}
	var err error
	if refresh {
		err = client.postJSON("/v1/providers/refresh", nil, &body)
	} else {
		err = client.getJSON("/v1/providers", &body)
	}
	if err != nil {
		if lenserr.HasCode(err, lenserr.CodeCLIServiceNotRunning) {
			_, _ = fmt.Fprintf(out, "Service at %s is not running (connection refused)\n", addr)
			return nil
		}
		return err
	}

	_, _ = fmt.Fprintf(out, "Service at %s: ok\n\n", addr)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROVIDER\tAVAILABLE\tSUCCESS\tLATENCY\tCAPABILITIES")
	for _, p := range body.Providers {
		kinds := make([]string, len(p.Capabilities))
		for i, k := range p.Capabilities {
			kinds[i] = string(k)
		}
		_, _ = fmt.Fprintf(w, "%s\t%t\t%.0f%%\t%dms\t%s\n",
			p.Name,
			p.Health.Available,
			p.Health.SuccessRate*100,
			p.Health.ResponseTimeMs,
			strings.Join(kinds, ","),
		)
	}
	return w.Flush()
}
