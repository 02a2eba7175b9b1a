package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
)

var togglesJSON bool

var togglesCmd = &cobra.Command{
	Use:   "toggles",
	Short: "Inspect or change the filter toggles",
}

var togglesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the five toggles",
	Args:  cobra.NoArgs,
	RunE:  runTogglesList,
}

var togglesSetCmd = &cobra.Command{
	Use:   "set <key> <on|off>",
	Short: "Enable or disable a toggle; applies the next time the feed is opened",
	Args:  cobra.ExactArgs(2),
	RunE:  runTogglesSet,
}

func init() {
	togglesListCmd.Flags().BoolVar(&togglesJSON, "json", false, "output as JSON")
	togglesCmd.AddCommand(togglesListCmd)
	togglesCmd.AddCommand(togglesSetCmd)
}

func openStore() (*toggles.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return toggles.OpenSQLite(cfg.Store.Path)
}

func runTogglesList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	views, err := toggles.Views(cmd.Context(), store)
	if err != nil {
		return err
	}
	if togglesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTATE\tDESCRIPTION")
	for _, v := range views {
		state := "off"
		if v.Enabled {
			state = "on"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Key, state, v.Label)
	}
	return tw.Flush()
}

func runTogglesSet(cmd *cobra.Command, args []string) error {
	on, err := parseOnOff(args[1])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := toggles.SetToggle(cmd.Context(), store, args[0], on); err != nil {
		return err
	}
	fmt.Printf("%s = %v\n", args[0], on)
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}
