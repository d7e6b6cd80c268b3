// Package main provides the pricewatch command-line client.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/cascade"
	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080/api"

type globalOptions struct {
	apiURL     string
	outputJSON bool
	timeout    time.Duration
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "pricewatch",
		Short: "Browse and report commodity prices",
		Long: `Browse and report commodity prices against a pricewatch API.

Examples:
  pricewatch states
  pricewatch cities --state 1
  pricewatch item add Rice
  pricewatch unit add "50kg bag" --item 1
  pricewatch submit --state 1 --city 1 --market 1 --item 1 --unit 1 --price 45000
  pricewatch prices --city 1 --page 2
`,
		SilenceUsage: true,
	}

	apiURL := os.Getenv("PRICEWATCH_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", apiURL, "API base URL (env PRICEWATCH_API_URL)")
	cmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Output results as JSON")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout for the whole command")

	cmd.AddCommand(
		statesCmd(opts),
		citiesCmd(opts),
		marketsCmd(opts),
		itemsCmd(opts),
		unitsCmd(opts),
		itemCmd(opts),
		unitCmd(opts),
		submitCmd(opts),
		pricesCmd(opts),
	)
	return cmd
}

func (o *globalOptions) context() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (o *globalOptions) api() *client.Client {
	return client.New(o.apiURL, nil)
}

func notifier() cascade.Notifier {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return cascade.LogNotifier{Logger: logger}
}

func (o *globalOptions) print(w io.Writer, v any, table func(*tabwriter.Writer)) error {
	if o.outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func statesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			loc := cascade.NewLocation(opts.api(), notifier())
			if err := loc.LoadStates(ctx); err != nil {
				return err
			}
			states := loc.States.Options()
			return opts.print(cmd.OutOrStdout(), states, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME")
				for _, s := range states {
					fmt.Fprintf(tw, "%d\t%s\n", s.ID, s.Name)
				}
			})
		},
	}
}

func citiesCmd(opts *globalOptions) *cobra.Command {
	var stateId int
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "List the cities of a state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			loc := cascade.NewLocation(opts.api(), notifier())
			if err := loc.SelectState(ctx, stateId); err != nil {
				return err
			}
			cities := loc.Cities.Options()
			return opts.print(cmd.OutOrStdout(), cities, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tLATITUDE\tLONGITUDE")
				for _, c := range cities {
					fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\n", c.ID, c.Name, c.Latitude, c.Longitude)
				}
			})
		},
	}
	cmd.Flags().IntVar(&stateId, "state", 0, "State ID")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func marketsCmd(opts *globalOptions) *cobra.Command {
	var cityId int
	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List the markets of a city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			loc := cascade.NewLocation(opts.api(), notifier())
			if err := loc.SelectCity(ctx, cityId); err != nil {
				return err
			}
			markets := loc.Markets.Options()
			return opts.print(cmd.OutOrStdout(), markets, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME")
				for _, m := range markets {
					fmt.Fprintf(tw, "%d\t%s\n", m.ID, m.Name)
				}
			})
		},
	}
	cmd.Flags().IntVar(&cityId, "city", 0, "City ID")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func itemsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "List items with their units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			cat := cascade.NewCatalog(opts.api(), notifier())
			if err := cat.LoadItems(ctx); err != nil {
				return err
			}
			items := cat.Items.Options()
			return opts.print(cmd.OutOrStdout(), items, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tUNITS")
				for _, i := range items {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", i.ID, i.Name, unitNames(i.Units))
				}
			})
		},
	}
}

func unitNames(units []client.Unit) string {
	out := ""
	for i, u := range units {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%d)", u.Name, u.ID)
	}
	return out
}

func unitsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List units with their items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			units, err := opts.api().Units(ctx)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), units, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tITEM")
				for _, u := range units {
					itemName := ""
					if u.Item != nil {
						itemName = u.Item.Name
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Name, itemName)
				}
			})
		},
	}
}

func itemCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage items",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Find or create an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			cat := cascade.NewCatalog(opts.api(), notifier())
			item, err := cat.AddItem(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), item, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tUNITS")
				fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.Name, unitNames(item.Units))
			})
		},
	})
	return cmd
}

func unitCmd(opts *globalOptions) *cobra.Command {
	var itemId int
	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Manage units",
	}
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Find or create a unit of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			cat := cascade.NewCatalog(opts.api(), notifier())
			cat.SelectItem(itemId)
			unit, err := cat.AddUnit(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), unit, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tITEM ID")
				fmt.Fprintf(tw, "%d\t%s\t%d\n", unit.ID, unit.Name, unit.ItemId)
			})
		},
	}
	add.Flags().IntVar(&itemId, "item", 0, "Item ID")
	_ = add.MarkFlagRequired("item")
	cmd.AddCommand(add)
	return cmd
}

func submitCmd(opts *globalOptions) *cobra.Command {
	var (
		stateId, cityId, marketId int
		itemId, unitId            int
		price                     string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Report an observed price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", price, err)
			}

			ctx, cancel := opts.context()
			defer cancel()

			form := cascade.NewForm(opts.api(), notifier())
			if err := form.Init(ctx); err != nil {
				return err
			}
			if err := form.Location.SelectState(ctx, stateId); err != nil {
				return err
			}
			if err := form.Location.SelectCity(ctx, cityId); err != nil {
				return err
			}
			form.Location.SelectMarket(marketId)
			form.Catalog.SelectItem(itemId)
			form.Catalog.SelectUnit(unitId)
			form.SetPrice(amount)

			report, err := form.Submit(ctx)
			if err != nil {
				return err
			}
			return printReports(opts, cmd.OutOrStdout(), []client.PriceReport{*report}, report)
		},
	}
	cmd.Flags().IntVar(&stateId, "state", 0, "State ID")
	cmd.Flags().IntVar(&cityId, "city", 0, "City ID")
	cmd.Flags().IntVar(&marketId, "market", 0, "Market ID")
	cmd.Flags().IntVar(&itemId, "item", 0, "Item ID")
	cmd.Flags().IntVar(&unitId, "unit", 0, "Unit ID")
	cmd.Flags().StringVar(&price, "price", "", "Observed price")
	return cmd
}

func pricesCmd(opts *globalOptions) *cobra.Command {
	var (
		stateId, cityId, marketId int
		itemId, unitId            int
		page                      int
	)
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Browse reported prices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			browser := cascade.NewBrowser(opts.api(), notifier())
			// select filters in cascade order, then load a single page
			if stateId > 0 {
				_ = browser.Location.SelectState(ctx, stateId)
			}
			if cityId > 0 {
				_ = browser.Location.SelectCity(ctx, cityId)
			}
			browser.Location.SelectMarket(marketId)
			if itemId > 0 {
				_ = browser.Catalog.LoadItems(ctx)
				browser.Catalog.SelectItem(itemId)
			}
			browser.Catalog.SelectUnit(unitId)
			if err := browser.LoadPage(ctx, page); err != nil {
				return err
			}

			reports := browser.Reports.Options()
			md := browser.Metadata()
			if opts.outputJSON {
				return opts.print(cmd.OutOrStdout(), client.PricePage{Data: reports, Metadata: md}, nil)
			}
			if err := printReports(opts, cmd.OutOrStdout(), reports, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d (%d reports)\n", md.Page, md.TotalPages, md.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&stateId, "state", 0, "Filter by state ID")
	cmd.Flags().IntVar(&cityId, "city", 0, "Filter by city ID")
	cmd.Flags().IntVar(&marketId, "market", 0, "Filter by market ID")
	cmd.Flags().IntVar(&itemId, "item", 0, "Filter by item ID")
	cmd.Flags().IntVar(&unitId, "unit", 0, "Filter by unit ID")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func printReports(opts *globalOptions, w io.Writer, reports []client.PriceReport, jsonValue any) error {
	if jsonValue == nil {
		jsonValue = reports
	}
	return opts.print(w, jsonValue, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "DATE\tSTATE\tCITY\tMARKET\tITEM\tUNIT\tPRICE")
		for _, r := range reports {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Local().Format("02 Jan 2006 15:04"),
				r.StateName, r.CityName, r.MarketName, r.ItemName, r.UnitName,
				r.Price.StringFixed(2))
		}
	})
}
