package main

import (
	"context"
	"encoding/json"
	"os"

	"editwatch/internal/event"
	"editwatch/internal/logging"
)

// startPrinter mirrors the observation stream onto stdout as JSON lines.
// It stops when the bus closes or the context is cancelled.
func startPrinter(ctx context.Context, bus *event.Bus[event.Observation], logger *logging.Logger) {
	output, cancel := bus.Subscribe()
	if output == nil {
		logger.Warn("print mode unavailable", map[string]string{
			"reason": "bus closed",
		})
		return
	}

	go func() {
		defer cancel()
		encoder := json.NewEncoder(os.Stdout)
		for {
			select {
			case observation, ok := <-output:
				if !ok {
					return
				}
				if err := encoder.Encode(observation); err != nil {
					logger.Warn("print encode failed", map[string]string{
						"error": err.Error(),
					})
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
