package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

func isChartEvent(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return false
	}

	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func runWatch(ctx context.Context, table *tuning.Table, mods difficulty.Modifier, logger *log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err = watcher.Add(*watchDir); err != nil {
		return fmt.Errorf("watch %s: %w", *watchDir, err)
	}

	calc := reading.NewDifficultyCalculator(table)

	logger.Println("Watching", *watchDir, "for chart changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isChartEvent(event) {
				continue
			}

			c, err := loadChart(event.Name)
			if err != nil {
				// editors often write partial files, the next event picks up the full one
				logger.Println("Skipping", event.Name+":", err)
				continue
			}

			attr, err := calc.CalculateSingle(ctx, c.Objects, c.newDifficulty(mods, *speedFlag))
			if err != nil {
				logger.Println("Failed to calculate", event.Name+":", err)
				continue
			}

			fmt.Fprintf(os.Stdout, "%s: %s stars (aim %s, speed %s)\n", filepath.Base(event.Name), formatValue(attr.Total), formatValue(attr.Aim), formatValue(attr.Speed))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Println("Watcher error:", err)
		}
	}
}
