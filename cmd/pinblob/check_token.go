package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eringen/pinblob"
)

var checkTokenCmd = &cobra.Command{
	Use:   "check-token",
	Short: "Inspect the storage credential and verify it against the store",
	Args:  cobra.NoArgs,
	RunE:  runCheckToken,
}

func runCheckToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	gw, err := pinblob.OpenGateway(cmd.Context(), cfg, nil, cliLogger())
	if err != nil {
		return err
	}
	defer gw.Close()

	d := pinblob.Diagnose(cmd.Context(), gw, cfg.Environment)

	lines := []string{fmt.Sprintf("Driver:      %s", d.Driver)}
	if d.TokenKey != "" {
		lines = append(lines, fmt.Sprintf("Variable:    %s", d.TokenKey))
		lines = append(lines, fmt.Sprintf("Present:     %t", d.TokenExists))
	}
	if info := d.TokenInfo; info != nil {
		lines = append(lines,
			fmt.Sprintf("Length:      %d", info.Length),
			fmt.Sprintf("Looks like:  %s%s", info.FirstChars, info.LastChars),
			fmt.Sprintf("Format:      %s (type %s, store %s)", info.Format, info.Type, info.StoreID),
		)
		if info.HadQuotes {
			lines = append(lines, "Quotes:      yes (stripped before use)")
		}
	}
	if d.Status != 0 {
		lines = append(lines, fmt.Sprintf("HTTP status: %d %s", d.Status, d.StatusText))
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		BorderForeground(lipgloss.Color("63"))
	fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(strings.Join(lines, "\n")))

	if !d.Verified {
		color.Red("✗ %s", d.Error)
		if d.TokenKey != "" {
			color.Yellow("Make sure %s is properly set in your environment variables without quotes.", d.TokenKey)
		}
		return fmt.Errorf("storage credential not verified")
	}
	color.Green("✓ Credential accepted by the %s store", d.Driver)
	return nil
}
