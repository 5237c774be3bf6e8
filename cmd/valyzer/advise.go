package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valyzer/valyzer/internal/amadeus"
	"github.com/valyzer/valyzer/internal/cli"
	"github.com/valyzer/valyzer/internal/common"
	"github.com/valyzer/valyzer/internal/engine"
	"github.com/valyzer/valyzer/internal/forecast"
	"github.com/valyzer/valyzer/internal/model"
	"github.com/valyzer/valyzer/internal/weather"
)

func adviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise <origin> <destination> <date>",
		Short: "Recommend how many days before departure to buy",
		Long: `Fetches fare quotes across a date window around the travel date,
aggregates them into a daily price series, fits a forecast and recommends
the cheapest purchase day. Origin and destination accept IATA codes or
display names like "Istanbul Airport (IST)".`,
		Args: cobra.ExactArgs(3),
		RunE: runAdvise,
	}

	cmd.Flags().String("class", "ECONOMY", "travel class (ECONOMY, PREMIUM_ECONOMY, BUSINESS, FIRST)")
	cmd.Flags().Int("adults", 1, "number of adult passengers")
	cmd.Flags().String("currency", "EUR", "currency for displayed prices")
	cmd.Flags().Int("window-days", amadeus.DefaultWindowDays, "days queried around the travel date")
	cmd.Flags().Int("concurrency", 1, "concurrent per-date requests (max 3)")

	return cmd
}

func runAdvise(cmd *cobra.Command, args []string) error {
	targetDate, err := time.Parse("2006-01-02", args[2])
	if err != nil {
		return fmt.Errorf("invalid travel date %q, expected YYYY-MM-DD: %w", args[2], err)
	}

	travelClass, _ := cmd.Flags().GetString("class")
	adults, _ := cmd.Flags().GetInt("adults")
	currency, _ := cmd.Flags().GetString("currency")
	windowDays, _ := cmd.Flags().GetInt("window-days")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	query := model.FareQuery{
		Origin:      weather.ExtractIATA(args[0]),
		Destination: weather.ExtractIATA(args[1]),
		TargetDate:  targetDate,
		TravelClass: travelClass,
		Adults:      adults,
		Currency:    strings.ToUpper(currency),
		WindowDays:  windowDays,
	}

	client, err := initClient()
	if err != nil {
		return err
	}

	dates := amadeus.WindowDates(targetDate, time.Now(), windowDays)
	bar := progressbar.NewOptions(len(dates),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Fetching fare quotes...[reset]"),
	)

	fetcher := amadeus.NewWindowFetcher(client)
	fetcher.Concurrency = concurrency
	if viper.GetInt("fetch.concurrency") > 0 {
		fetcher.Concurrency = viper.GetInt("fetch.concurrency")
	}
	fetcher.Progress = func(completed, _ int) {
		_ = bar.Set(completed)
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	eng := initEngine(client, store, fetcher)
	defer eng.Close()

	advice, err := eng.Advise(cmd.Context(), query)
	_ = bar.Finish()
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return describeFetchError(err)
	}

	renderAdvice(cmd, query, advice)
	return nil
}

// describeFetchError maps the error taxonomy onto differentiated messages.
func describeFetchError(err error) error {
	kind, ok := common.FetchErrorKindOf(err)
	if !ok {
		return err
	}

	switch kind {
	case common.FetchAuth:
		return fmt.Errorf("authentication with the fare provider failed; check amadeus.client_id and amadeus.client_secret: %w", err)
	case common.FetchRateLimited:
		return fmt.Errorf("the fare provider is throttling requests; try again in a few minutes: %w", err)
	case common.FetchUpstream:
		return fmt.Errorf("the fare provider returned an error: %w", err)
	default:
		return err
	}
}

func renderAdvice(cmd *cobra.Command, query model.FareQuery, advice *engine.Advice) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("%s → %s on %s",
		query.Origin, query.Destination, query.TargetDate.Format("2006-01-02"))))

	if len(advice.Series) == 0 {
		fmt.Fprintln(out, cli.WarningStyle.Render("No fares found in the queried window."))
		return
	}

	if advice.Recommendation != nil {
		rec := advice.Recommendation
		msg := fmt.Sprintf("Buy %d days before departure  —  expected price %.2f %s",
			rec.DaysBeforeDeparture, rec.Price, query.Currency)
		if rec.Source == model.SourceHistorical {
			msg += "\n" + cli.SubtleStyle.Render("(based on observed prices; not enough data to train the forecast)")
		}
		fmt.Fprintln(out, cli.BoxStyle.Render(cli.SuccessStyle.Render(msg)))
	}

	if advice.ModelState == forecast.Trained {
		quality := "held-out"
		if !advice.HeldOut {
			quality = "in-sample, optimistic"
		}
		fmt.Fprintln(out, cli.SubtleStyle.Render(
			fmt.Sprintf("Model RMSE: %.2f (%s estimate over %d observed days)",
				advice.RMSE, quality, len(advice.Series))))
	}

	renderTrend(cmd, advice.Trend)
	renderSeries(cmd, advice.Series, query.Currency)
}

func renderTrend(cmd *cobra.Command, trend model.TrendSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.TableHeaderStyle.Render("Price trends"))

	line := func(label string, v *float64) {
		if v == nil {
			fmt.Fprintf(out, "  %-16s %s\n", label, cli.SubtleStyle.Render("n/a"))
			return
		}
		fmt.Fprintf(out, "  %-16s %.2f\n", label, *v)
	}

	line("Weekend avg", trend.WeekendAvg)
	line("Weekday avg", trend.WeekdayAvg)
	line("Min price", trend.MinPrice)
	line("Max price", trend.MaxPrice)
	line("Avg price", trend.AvgPrice)
	if trend.BestDayOfWeek != nil {
		fmt.Fprintf(out, "  %-16s %s\n", "Cheapest day", *trend.BestDayOfWeek)
	}
}

func renderSeries(cmd *cobra.Command, series model.FareSeries, currency string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.TableHeaderStyle.Render("Best offer per day"))
	for _, p := range series {
		marker := ""
		if p.IsWeekend {
			marker = cli.SubtleStyle.Render(" (weekend)")
		}
		fmt.Fprintf(out, "  %s  %8.2f %s%s\n",
			p.Date.Format("2006-01-02"), p.MinPrice, currency, marker)
	}
}
