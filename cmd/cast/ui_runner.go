package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cast/internal/driver"
	"cast/internal/ui"
)

type runOutcome struct {
	results []*driver.Result
	err     error
}

// runPreprocessWithUI preprocesses files behind a Bubble Tea progress
// view fed by driver events.
func runPreprocessWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		sink := driver.ChannelSink{Ch: events}
		results, err := driver.PreprocessAll(ctx, files, opts, sink)
		outcomeCh <- runOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
