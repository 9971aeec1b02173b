// Package browse is the interactive terminal front end: pick a region, a
// town and keywords, then page through the aggregated listings.
package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/jobscout-za/jobscout/internal/aggregator"
	"github.com/jobscout-za/jobscout/internal/region"
)

// Searcher runs one aggregated search. *aggregator.Aggregator implements it.
type Searcher interface {
	SearchWithReport(ctx context.Context, keywords, region, town string) (aggregator.Result, error)
}

// allTowns is the first town choice; it searches the whole region.
const allTowns = "All towns"

// Run drives the picker → prompt → loader → results loop until the user quits.
func Run(ctx context.Context, searcher Searcher) error {
	regions := region.Regions()
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.Name
	}

	for {
		ri, err := runPicker("jobscout: select a region", names, false)
		if err != nil || ri == pickQuit {
			return err
		}
		r := regions[ri]

		town, choice, err := pickTown(r)
		if err != nil || choice == pickQuit {
			return err
		}
		if choice == pickBack {
			continue
		}

		keywords, res, err := runPrompt(fmt.Sprintf("Keywords for %s", placeLabel(r, town)))
		if err != nil || res == pickQuit {
			return err
		}
		if res == pickBack {
			continue
		}

		result, err := runLoader(ctx, placeLabel(r, town), func(ctx context.Context) (aggregator.Result, error) {
			return searcher.SearchWithReport(ctx, keywords, r.ID, town)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := runResults(resultsHeading(keywords, r, town), result)
		if err != nil || quit {
			return err
		}
	}
}

// pickTown returns the chosen town slug ("" for the whole region) with
// choice 0, or choice pickBack or pickQuit.
func pickTown(r region.Region) (string, int, error) {
	items := make([]string, 0, len(r.Towns)+1)
	items = append(items, allTowns)
	for _, t := range r.Towns {
		items = append(items, region.DisplayName(t))
	}

	ti, err := runPicker("Select a town in "+r.Name, items, true)
	switch {
	case err != nil:
		return "", pickQuit, err
	case ti < 0:
		return "", ti, nil
	case ti == 0:
		return "", 0, nil
	default:
		return r.Towns[ti-1], 0, nil
	}
}

func placeLabel(r region.Region, town string) string {
	if town == "" {
		return r.Name
	}
	return region.DisplayName(town) + ", " + r.Name
}

func resultsHeading(keywords string, r region.Region, town string) string {
	if keywords == "" {
		return "Jobs in " + placeLabel(r, town)
	}
	return fmt.Sprintf("%q in %s", keywords, placeLabel(r, town))
}
