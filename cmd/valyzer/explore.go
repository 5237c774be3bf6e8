package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valyzer/valyzer/internal/amadeus"
	"github.com/valyzer/valyzer/internal/cli"
	"github.com/valyzer/valyzer/internal/weather"
)

func exploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore <destination>",
		Short: "Show activities, hotels, weather and holidays for a destination",
		Long: `Destination enrichment for a city. Accepts an IATA code or a display
name like "London Heathrow Airport (LHR)". Holidays cover the next 30 days.`,
		Args: cobra.ExactArgs(1),
		RunE: runExplore,
	}

	return cmd
}

func runExplore(cmd *cobra.Command, args []string) error {
	client, err := initClient()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	eng := initEngine(client, store, amadeus.NewWindowFetcher(client))
	defer eng.Close()

	out := cmd.OutOrStdout()
	cityName := weather.ExtractCityName(args[0])
	iata := weather.ExtractIATA(args[0])

	fmt.Fprintln(out, cli.TitleStyle.Render(cityName))

	if w, err := eng.Weather(cmd.Context(), cityName); err == nil {
		fmt.Fprintf(out, "Weather: %s, %.1f°C (feels like %.1f°C)\n\n",
			w.Description, w.TempC, w.FeelsLikeC)
	}

	if activities, err := eng.Activities(cmd.Context(), cityName); err == nil && len(activities) > 0 {
		fmt.Fprintln(out, cli.TableHeaderStyle.Render("Things to do"))
		limit := len(activities)
		if limit > 10 {
			limit = 10
		}
		for _, a := range activities[:limit] {
			fmt.Fprintf(out, "  %s", a.Name)
			if a.Price != "" {
				fmt.Fprintf(out, "  %s", cli.SubtleStyle.Render(a.Price))
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)
	}

	if hotels, err := eng.Hotels(cmd.Context(), iata); err == nil && len(hotels) > 0 {
		fmt.Fprintln(out, cli.TableHeaderStyle.Render("Hotels"))
		limit := len(hotels)
		if limit > 10 {
			limit = 10
		}
		for _, h := range hotels[:limit] {
			fmt.Fprintf(out, "  %s", h.Name)
			if h.Sentiment != nil {
				fmt.Fprintf(out, "  %s", cli.SubtleStyle.Render(
					fmt.Sprintf("rating %d/100 (%d reviews)", h.Sentiment.OverallRating, h.Sentiment.ReviewCount)))
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)
	}

	from := time.Now()
	holidays, err := eng.Holidays(cmd.Context(), iata, from, from.AddDate(0, 0, 30))
	if err == nil && len(holidays) > 0 {
		fmt.Fprintln(out, cli.TableHeaderStyle.Render("Upcoming public holidays"))
		for _, h := range holidays {
			fmt.Fprintf(out, "  %s  %s\n", h.Date.Format("2006-01-02"), h.Name)
		}
	}

	return nil
}
