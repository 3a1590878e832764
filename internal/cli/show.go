package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/refsched/internal/config"
	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	flagRefs    []string
	flagGroups  []string
	flagGroupBy string
	flagFormat  string
	flagSort    string
	flagStrict  bool
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [Surname_FirstName...]",
		Short: "Show the upcoming assignments of referees",
		Example: `  refsched show --ref Muster_Max --ref Beispiel_Erika
  refsched show --group "Kreis Nord" --group-by date
  refsched show Muster_Max --format ics > assignments.ics`,
		RunE: runShow,
	}

	cmd.Flags().StringSliceVar(&flagRefs, "ref", nil, "Referee as Surname_FirstName (repeatable)")
	cmd.Flags().StringSliceVar(&flagGroups, "group", nil, "Configured referee group title (repeatable)")
	cmd.Flags().StringVar(&flagGroupBy, "group-by", "referee", "Grouping: referee or date")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort matches within a section: kickoff, league or home")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Fail on the first listing row that cannot be read")

	return cmd
}

// runShow is the show command logic
func runShow(cmd *cobra.Command, args []string) error {
	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON && format != FormatICS {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", flagFormat)
	}

	groupBy, err := schedule.ParseGroupBy(flagGroupBy)
	if err != nil {
		return err
	}

	order := SortOrder(strings.ToLower(flagSort))
	if !order.Valid() {
		return fmt.Errorf("invalid sort order: %s (must be 'kickoff', 'league' or 'home')", flagSort)
	}

	names, err := match.ParseRefereeNames(append(append([]string{}, flagRefs...), args...))
	if err != nil {
		return err
	}

	requested := len(names) > 0 || len(flagGroups) > 0
	cfg, err := setup(cmd.Context(), requested)
	if err != nil {
		return err
	}

	sched, err := buildSchedule(cmd, cfg, names)
	if err != nil {
		return err
	}

	result := NewOutputResult(sched, groupBy, order, cfg.LeagueNames, time.Now())

	// Write output
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// buildSchedule adds the referees of the --group flags to names and runs
// the searches
func buildSchedule(cmd *cobra.Command, cfg *config.Config, names []match.RefereeName) (*schedule.Schedule, error) {
	for _, title := range flagGroups {
		g, ok := cfg.Groups[title]
		if !ok {
			return nil, fmt.Errorf("unknown group: %s", title)
		}
		refs, err := match.ParseRefereeNames(g.Referees)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", title, err)
		}
		names = append(names, refs...)
	}

	if flagStrict {
		cfg.Portal.Strict = true
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Searching %d referees on %s\n", len(names), cfg.Portal.BaseURL)
	}

	svc, err := newService(cfg, nil)
	if err != nil {
		return nil, err
	}

	sched, err := svc.Build(cmd.Context(), names)
	if err != nil {
		if errors.Is(err, schedule.ErrUnavailable) {
			return nil, fmt.Errorf("schedule temporarily unavailable: %w", err)
		}
		return nil, fmt.Errorf("building schedule: %w", err)
	}
	return sched, nil
}
