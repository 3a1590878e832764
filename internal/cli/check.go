package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/refsched/internal/match"
	"github.com/pfrederiksen/refsched/internal/schedule"
	"github.com/pfrederiksen/refsched/internal/storage"
	"github.com/pfrederiksen/refsched/internal/telegram"
	"github.com/spf13/cobra"
)

// ErrChangesFound is returned by check when assignments changed since the
// last run. Execute turns it into ExitChanges.
var ErrChangesFound = errors.New("assignments changed")

var (
	flagDataDir string
	flagRefresh bool
	flagNotify  bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [Surname_FirstName...]",
		Short: "Report assignments added, changed or cancelled since the last check",
		Long: `Report assignments added, changed or cancelled since the last check.
Tracks the matches of each referee set across runs and exits with status 2
when anything changed, so it can drive a cron job.`,
		RunE: runCheck,
	}

	cmd.Flags().StringSliceVar(&flagRefs, "ref", nil, "Referee as Surname_FirstName (repeatable)")
	cmd.Flags().StringSliceVar(&flagGroups, "group", nil, "Configured referee group title (repeatable)")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "~/.local/share/refsched", "Data directory for snapshots")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Refresh snapshot without showing changes")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Fail on the first listing row that cannot be read")
	cmd.Flags().BoolVar(&flagNotify, "notify", false, "Send changes to the configured Telegram chat")

	return cmd
}

// CheckResult is the output of one check run
type CheckResult struct {
	CheckedAt time.Time            `json:"checked_at"`
	Referees  []match.RefereeName  `json:"referees"`
	New       []schedule.MatchView `json:"new"`
	Changed   []schedule.MatchView `json:"changed"`
	Removed   []schedule.MatchView `json:"removed"`
	Count     int                  `json:"count"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	names, err := match.ParseRefereeNames(append(append([]string{}, flagRefs...), args...))
	if err != nil {
		return err
	}
	if len(names) == 0 && len(flagGroups) == 0 {
		return errors.New("no referee given (use --ref, --group or arguments)")
	}

	cfg, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}

	var notifier *telegram.Client
	if flagNotify {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("configuring telegram: %w", err)
		}
	}

	store, err := storage.New(flagDataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sched, err := buildSchedule(cmd, cfg, names)
	if err != nil {
		return err
	}
	key := storage.Key(sched.Referees)

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Data directory: %s, snapshot %s\n", flagDataDir, key)
	}

	// Load previous snapshot
	var previous *match.Snapshot
	if !flagRefresh {
		previous, err = store.LoadSnapshot(key)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
	}

	now := time.Now()
	current := sched.Matches()
	diff := match.Diff(previous, current, now)

	// Rows that could not be read would show up as cancelled next time
	if len(sched.Failures) > 0 {
		return fmt.Errorf("%s could not be read, snapshot left unchanged",
			plural(len(sched.Failures), "listing row", "listing rows"))
	}

	if flagRefresh {
		diff = &match.DiffResult{}
	}

	// A failed delivery leaves the snapshot untouched
	if notifier != nil && diff.Count() > 0 {
		if err := notifier.SendAll(cmd.Context(), telegram.FormatChanges(diff, cfg.LeagueNames)); err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
	}

	if err := store.CreateSnapshotFromMatches(current, key); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	if flagRefresh && format == FormatText {
		fmt.Fprintln(cmd.OutOrStdout(), "Snapshot refreshed successfully.")
		return nil
	}

	result := NewCheckResult(sched.Referees, diff, cfg.LeagueNames, now)
	if err := WriteCheck(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if result.Count > 0 {
		return ErrChangesFound
	}
	return nil
}

// NewCheckResult renders a diff for output
func NewCheckResult(referees []match.RefereeName, diff *match.DiffResult, leagueNames map[string]string, now time.Time) *CheckResult {
	render := func(matches []*match.Match) []schedule.MatchView {
		views := make([]schedule.MatchView, 0, len(matches))
		for _, m := range matches {
			views = append(views, schedule.NewMatchView(m, leagueNames))
		}
		return views
	}

	if referees == nil {
		referees = []match.RefereeName{}
	}
	return &CheckResult{
		CheckedAt: now.UTC(),
		Referees:  referees,
		New:       render(diff.New),
		Changed:   render(diff.Changed),
		Removed:   render(diff.Removed),
		Count:     diff.Count(),
	}
}

// WriteCheck writes a check result in the specified format
func WriteCheck(w io.Writer, result *CheckResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case FormatText:
		if result.Count == 0 {
			fmt.Fprintln(w, "No changes since last check.")
			return nil
		}
		writeChanges(w, "New assignments", result.New)
		writeChanges(w, "Changed", result.Changed)
		writeChanges(w, "Cancelled", result.Removed)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeChanges(w io.Writer, title string, matches []schedule.MatchView) {
	if len(matches) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(matches))
	for _, m := range matches {
		fmt.Fprintf(w, "  %s %s  %s  %s v. %s\n", m.Date, m.Time, m.LeagueName, m.Home, m.Guest)
		for _, line := range m.TeamStatus {
			fmt.Fprintf(w, "      %s\n", line)
		}
	}
}
