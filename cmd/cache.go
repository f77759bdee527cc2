package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"videoapi/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the result cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached stream URLs",
	Args:  cobra.NoArgs,
	RunE:  cacheListRun,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached stream URL",
	Args:  cobra.NoArgs,
	RunE:  cacheClearRun,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func cacheListRun(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
		return nil
	}
	defer c.Close()

	entries, err := c.List(cmd.Context())
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(entries)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.CacheTable(entries))
	return nil
}

func cacheClearRun(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
		return nil
	}
	defer c.Close()

	n, err := c.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries.\n", n)
	return nil
}
