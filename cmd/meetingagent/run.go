package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	meetingagent "github.com/voocel/meetingagent"
	"github.com/voocel/meetingagent/agenda"
)

func newRunCmd() *cobra.Command {
	var (
		agendaSource string
		goals        []string
		background   string
		meetingID    string
		interval     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one meeting, reading transcript lines from stdin",
		Long: `Starts a meeting from the given agenda and feeds every stdin line to the
agent as a transcript chunk. Closing stdin ends the meeting and prints the
summary. An agenda source may be inline text, a file path, or an HTTP URL;
HTML agendas are converted to markdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Log)

			gen, err := buildGenerator(cfg.LLM)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			agendaText, err := agenda.NewLoader().Load(ctx, agendaSource)
			if err != nil {
				return err
			}

			if meetingID == "" {
				meetingID = uuid.NewString()
			}
			if interval == 0 {
				interval = time.Duration(cfg.Agent.AnalysisIntervalSeconds) * time.Second
			}

			agent := meetingagent.New(gen,
				meetingagent.WithAnalysisInterval(interval),
				meetingagent.WithLogger(logger),
				meetingagent.WithOnUpdate(func(state *meetingagent.AgentState) {
					for _, s := range state.RecentSuggestions(3) {
						logger.Info().
							Str("kind", string(s.Kind)).
							Str("severity", string(s.Severity)).
							Msg(s.Content)
					}
				}),
			)

			registry := meetingagent.NewRegistry()
			state, err := agent.StartMeeting(ctx, meetingID, agendaText, goals, background)
			if err != nil {
				return err
			}
			registry.Register(meetingID, agent)
			defer registry.Unregister(meetingID)

			fmt.Fprintf(os.Stderr, "Meeting %s started with %d topics:\n", meetingID, len(state.Todos))
			for _, todo := range state.Todos {
				fmt.Fprintf(os.Stderr, "  [%d] %s\n", todo.Priority, todo.Topic)
			}

			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				agent.AddTranscriptChunk(line)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading transcript: %w", err)
			}

			// Pick up whatever arrived after the last periodic cycle.
			if _, err := agent.AnalyzeNow(ctx); err != nil {
				logger.Warn().Err(err).Msg("final analysis failed")
			}

			summary, err := agent.EndMeeting(ctx)
			if err != nil {
				return err
			}

			fmt.Println(summary.Text)
			report, err := json.MarshalIndent(struct {
				Completed        []meetingagent.TodoOutcome `json:"todos_completed"`
				Missed           []meetingagent.TodoOutcome `json:"todos_missed"`
				TotalSuggestions int                        `json:"total_suggestions"`
				DurationMinutes  float64                    `json:"duration_minutes"`
			}{summary.Completed, summary.Missed, summary.TotalSuggestions, summary.DurationMinutes}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&agendaSource, "agenda", "", "agenda text, file path, or URL (required)")
	cmd.Flags().StringArrayVar(&goals, "goal", nil, "meeting goal (repeatable)")
	cmd.Flags().StringVar(&background, "context", "", "additional context, e.g. previous meetings")
	cmd.Flags().StringVar(&meetingID, "meeting-id", "", "meeting identifier (default: random)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "analysis interval (overrides config)")
	_ = cmd.MarkFlagRequired("agenda")
	return cmd
}
