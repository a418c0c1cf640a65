package main

import (
	"context"
	"io"
	"log"

	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/internal/tui"
	"github.com/mendworks/mend/pkg/models"
)

// runWithTUI drives the relay behind the live run view. The relay runs in
// the background; its events are forwarded as TUI messages. The view stays
// up after completion so the result can be read, until the user quits.
func runWithTUI(ctx context.Context, relay *pipeline.Relay, pc *pipeline.Context, targetDir string) *pipeline.Context {
	// Log output corrupts the alternate screen.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	program, _ := tui.NewProgram(targetDir)

	finalCh := make(chan *pipeline.Context, 1)
	go func() {
		final := relay.Run(ctx, pc)
		finalCh <- final
	}()

	go func() {
		for ev := range relay.Events() {
			program.Send(tui.EventMsg{Event: ev})
			if ev.Type == pipeline.EventRunFinished {
				success := ev.State == models.StateCompleted || ev.State == models.StateFixSucceeded
				program.Send(tui.RunDoneMsg{Success: success, State: ev.State, Message: ev.Message})
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(originalOutput)
		log.Printf("[tui] %v", err)
	}
	return <-finalCh
}
