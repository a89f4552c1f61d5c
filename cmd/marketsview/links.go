package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/page"
	"github.com/quaksai/marketsview/internal/viewstate"
	"github.com/spf13/cobra"
)

var embedURLCmd = &cobra.Command{
	Use:   "embed-url",
	Short: "Print the dashboard embed URL for a ticker",
	RunE:  runEmbedURL,
}

var shareLinkCmd = &cobra.Command{
	Use:   "share-link",
	Short: "Print the share link a page would publish for a location",
	RunE:  runShareLink,
}

var (
	embedTicker   string
	embedTab      string
	embedDays     int
	embedInterval string

	shareLocation string
	shareDays     int
	shareTab      string
)

func init() {
	rootCmd.AddCommand(embedURLCmd)
	rootCmd.AddCommand(shareLinkCmd)

	embedURLCmd.Flags().StringVar(&embedTicker, "ticker", "", "key ticker (required)")
	embedURLCmd.Flags().StringVar(&embedTab, "tab", "", "dashboard tab (default from config)")
	embedURLCmd.Flags().IntVar(&embedDays, "days", 0, "relative interval in days")
	embedURLCmd.Flags().StringVar(&embedInterval, "interval", "", "explicit interval, YYYY-MM-DD_YYYY-MM-DD")
	embedURLCmd.MarkFlagRequired("ticker")
	embedURLCmd.MarkFlagsMutuallyExclusive("days", "interval")

	shareLinkCmd.Flags().StringVar(&shareLocation, "location", "", "page location (required)")
	shareLinkCmd.Flags().IntVar(&shareDays, "days", 0, "relative interval in days")
	shareLinkCmd.Flags().StringVar(&shareTab, "tab", "", "selected dashboard tab")
	shareLinkCmd.MarkFlagRequired("location")
}

func runEmbedURL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	descriptor, err := newDescriptor(cfg)
	if err != nil {
		return fmt.Errorf("building dashboard descriptor: %w", err)
	}

	tab := dashboard.Tab(embedTab)
	if tab == "" {
		tab = descriptor.DefaultTab()
	}
	_, tab = descriptor.Resolve(tab)

	snap := viewstate.Snapshot{
		PathParams: map[string]string{viewstate.ParamKeyTicker: embedTicker},
		Query:      url.Values{},
	}
	if embedInterval != "" {
		snap.Query.Set(viewstate.QueryInterval, embedInterval)
	}
	params := newDeriver(cfg).Derive(snap, viewstate.Selection{Days: embedDays, Tab: string(tab)})

	fmt.Println(descriptor.BuildEmbedURL(embedTicker, params, tab))
	return nil
}

func runShareLink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	descriptor, err := newDescriptor(cfg)
	if err != nil {
		return fmt.Errorf("building dashboard descriptor: %w", err)
	}

	deps := page.Deps{
		Descriptor: descriptor,
		Deriver:    newDeriver(cfg),
	}
	pv, err := deps.Preview(shareLocation, viewstate.Selection{Days: shareDays, Tab: shareTab})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pv)
}
