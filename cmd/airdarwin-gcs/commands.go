package main

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"airdarwin-gcs/internal/command"
	"airdarwin-gcs/internal/link"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the uplink command vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCommands(cmd.OutOrStdout())
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports present on this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := link.Ports()
		if err != nil {
			return fmt.Errorf("list ports: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ports) == 0 {
			fmt.Fprintln(out, "No serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}

func printCommands(out io.Writer) error {
	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.AddRow("COMMAND", "DESCRIPTION")
	for _, c := range command.Vocabulary() {
		tbl.AddRow(c.Name, c.Description)
	}
	_, err := fmt.Fprintln(out, tbl)
	return err
}
