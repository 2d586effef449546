package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brigade/fieldops/internal/triage"
)

// replayScript is the YAML input of the replay command.
type replayScript struct {
	ID        string         `yaml:"id"`
	SubjectID string         `yaml:"subject_id"`
	StartedAt time.Time      `yaml:"started_at"`
	Events    []triage.Event `yaml:"events"`
}

var defaultReplayStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func parseReplayScript(data []byte) (replayScript, error) {
	var s replayScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse replay script: %w", err)
	}
	if len(s.Events) == 0 {
		return s, fmt.Errorf("replay script has no events")
	}
	if s.ID == "" {
		s.ID = "replay"
	}
	if s.SubjectID == "" {
		s.SubjectID = "replay-subject"
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = defaultReplayStart
	}
	return s, nil
}

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a scripted sequence of answers through the engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script, err := parseReplayScript(data)
			if err != nil {
				return err
			}

			protocolFile, _ := cmd.Flags().GetString("protocol")
			protocol, err := loadProtocol(protocolFile)
			if err != nil {
				return err
			}
			noColor, _ := cmd.Flags().GetBool("no-color")
			if noColor {
				color.NoColor = true
			}

			o, err := runReplay(cmd.OutOrStdout(), script, protocol)
			if out, _ := cmd.Flags().GetString("out"); out != "" && o != nil {
				snapshot, serr := o.Serialize()
				if serr != nil {
					return serr
				}
				if werr := os.WriteFile(out, snapshot, 0o644); werr != nil {
					return werr
				}
			}
			return err
		},
	}
	cmd.Flags().String("protocol", "", "Protocol YAML file (defaults to the built-in body areas)")
	cmd.Flags().String("out", "", "Write the final assessment snapshot as JSON to this file")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

// The clock advances one second per event so timestamps in the snapshot are
// reproducible and ordered.
type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time { return c.t }
func (c *stepClock) tick()          { c.t = c.t.Add(time.Second) }

var (
	redAlert    = color.New(color.FgRed, color.Bold)
	yellowAlert = color.New(color.FgYellow)
	hardStop    = color.New(color.FgWhite, color.BgRed, color.Bold)
	dim         = color.New(color.Faint)
)

func severityColor(s triage.Severity) *color.Color {
	switch s {
	case triage.SeverityRed:
		return redAlert
	case triage.SeverityYellow:
		return yellowAlert
	}
	return dim
}

// runReplay applies the script event by event, printing the step trail and every
// alert as it is raised. The returned orchestrator reflects the state before the
// first failing event.
func runReplay(w io.Writer, script replayScript, protocol triage.Protocol) (*triage.Orchestrator, error) {
	clock := &stepClock{t: script.StartedAt}
	hooks := triage.Hooks{
		OnAlert: func(step triage.Step, c triage.Classification) {
			severityColor(c.Severity).Fprintf(w, "      %-6s %s: %s\n", c.Severity, step, c.Alert)
		},
		OnHardStop: func(step triage.Step, alert string) {
			hardStop.Fprintf(w, "      STOP   %s: %s", step, alert)
			fmt.Fprintln(w)
		},
		OnOverride: func(step triage.Step, reason string) {
			yellowAlert.Fprintf(w, "      OVERRIDE %s: %s\n", step, reason)
		},
	}

	obs := triage.ReplayObserver{
		Before: func(int, triage.Event) { clock.tick() },
		After: func(st triage.ReplayStep) {
			switch {
			case st.Err != nil:
				redAlert.Fprintf(w, "[%03d] %-26s FAILED: %v\n", st.Index, st.Event.Type, st.Err)
			case st.To != st.From:
				fmt.Fprintf(w, "[%03d] %-26s %s -> %s\n", st.Index, st.Event.Type, st.From, st.To)
			default:
				fmt.Fprintf(w, "[%03d] %-26s %s\n", st.Index, st.Event.Type, st.To)
			}
		},
	}
	o, err := triage.Replay(script.ID, script.SubjectID, protocol, script.Events, obs,
		triage.WithClock(clock.now), triage.WithHooks(hooks))
	if err != nil {
		return o, err
	}

	printSummary(w, o.Summary())
	return o, nil
}

func printSummary(w io.Writer, s triage.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "assessment %s (subject %s)\n", s.ID, s.SubjectID)
	fmt.Fprint(w, "overall severity: ")
	severityColor(s.Severity).Fprintln(w, s.Severity)
	if s.Urgency != "" {
		fmt.Fprintf(w, "urgency: %s\n", s.Urgency)
	}
	fmt.Fprintf(w, "current step: %s  blocked: %v\n", s.CurrentStep, s.Blocked)
	for _, st := range s.Steps {
		if !st.Visited {
			continue
		}
		fmt.Fprintf(w, "  %-14s ", st.Step)
		severityColor(st.Severity).Fprintln(w, st.Severity)
	}
	if len(s.CriticalAlerts) > 0 {
		fmt.Fprintln(w, "critical alerts:")
		for _, a := range s.CriticalAlerts {
			redAlert.Fprintf(w, "  - %s\n", a)
		}
	}
}
