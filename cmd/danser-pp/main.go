// Command danser-pp calculates star ratings and performance points of osu!standard charts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/batch"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/cache"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/reading"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/tuning"
)

var (
	app = kingpin.New("danser-pp", "Star rating and performance calculator for osu!standard charts")

	modsFlag   = app.Flag("mods", "Mods to apply, e.g. HDDT").Short('m').Default("NM").String()
	speedFlag  = app.Flag("speed", "Custom clock rate, overrides the rate of DT/HT").Default("0").Float64()
	tuningFlag = app.Flag("tuning", "YAML file overriding the default tuning tables").ExistingFile()

	starsCmd   = app.Command("stars", "Calculate the difficulty attributes of a chart")
	starsChart = starsCmd.Arg("chart", "Chart JSON dump").Required().ExistingFile()
	starsStep  = starsCmd.Flag("step", "Print the star rating after every object").Bool()
	starsPeaks = starsCmd.Flag("peaks", "Print the strain peaks of every section").Bool()

	ppCmd    = app.Command("pp", "Calculate the performance of a play")
	ppChart  = ppCmd.Arg("chart", "Chart JSON dump").Required().ExistingFile()
	ppReplay = ppCmd.Flag("replay", "Take judgements, combo and mods from an .osr replay").Short('r').ExistingFile()
	ppCombo  = ppCmd.Flag("combo", "Max combo, -1 for a full combo").Default("-1").Int()
	ppGreat  = ppCmd.Flag("n300", "300 count, -1 to derive it from the other counts").Default("-1").Int()
	ppOk     = ppCmd.Flag("n100", "100 count").Default("0").Int()
	ppMeh    = ppCmd.Flag("n50", "50 count").Default("0").Int()
	ppMiss   = ppCmd.Flag("misses", "Miss count").Default("0").Int()

	batchCmd     = app.Command("batch", "Calculate many charts with many mod combinations")
	batchCharts  = batchCmd.Arg("charts", "Chart JSON dumps").Required().ExistingFiles()
	batchModSets = batchCmd.Flag("mod-set", "Mod combination to calculate, repeatable").Default("NM").Strings()
	batchCache   = batchCmd.Flag("cache", "SQLite attribute cache").String()
	batchPurge   = batchCmd.Flag("purge", "Remove cached attributes of older calculator versions first").Bool()
	batchWorkers = batchCmd.Flag("workers", "Concurrent calculations, 0 for one per physical core").Default("0").Int()
	batchMetrics = batchCmd.Flag("metrics-addr", "Serve Prometheus metrics on this address while running").String()

	watchCmd = app.Command("watch", "Recalculate charts in a directory whenever they change")
	watchDir = watchCmd.Arg("directory", "Directory with chart JSON dumps").Required().ExistingDir()
)

func main() {
	app.Version("0.3.0")
	app.HelpFlag.Short('h')

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := log.New(os.Stderr, "[danser-pp] ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, logger); err != nil {
		stop()
		logger.Fatalf("%s: %v", command, err)
	}
}

func run(ctx context.Context, command string, logger *log.Logger) error {
	table := tuning.Default()

	if *tuningFlag != "" {
		var err error

		if table, err = tuning.Load(*tuningFlag); err != nil {
			return err
		}

		logger.Println("Loaded tuning table from", *tuningFlag)
	}

	mods, err := difficulty.ParseMods(*modsFlag)
	if err != nil {
		return err
	}

	switch command {
	case starsCmd.FullCommand():
		return runStars(ctx, table, mods)
	case ppCmd.FullCommand():
		return runPP(ctx, table, mods)
	case batchCmd.FullCommand():
		return runBatch(ctx, table, logger)
	case watchCmd.FullCommand():
		return runWatch(ctx, table, mods, logger)
	}

	return fmt.Errorf("unknown command %q", command)
}

func runStars(ctx context.Context, table *tuning.Table, mods difficulty.Modifier) error {
	c, err := loadChart(*starsChart)
	if err != nil {
		return err
	}

	calc := reading.NewDifficultyCalculator(table)
	diff := c.newDifficulty(mods, *speedFlag)

	switch {
	case *starsStep:
		steps, err := calc.CalculateStep(ctx, c.Objects, diff)
		if err != nil {
			return err
		}

		renderStep(os.Stdout, steps)
	case *starsPeaks:
		peaks, err := calc.CalculateStrainPeaks(ctx, c.Objects, diff)
		if err != nil {
			return err
		}

		renderPeaks(os.Stdout, peaks, table.Aim.SectionLength)
	default:
		attr, err := calc.CalculateSingle(ctx, c.Objects, diff)
		if err != nil {
			return err
		}

		renderAttributes(os.Stdout, attr)
	}

	return nil
}

func runPP(ctx context.Context, table *tuning.Table, mods difficulty.Modifier) error {
	c, err := loadChart(*ppChart)
	if err != nil {
		return err
	}

	p := &play{Mods: mods}

	if *ppReplay != "" {
		if p, err = loadReplay(*ppReplay); err != nil {
			return err
		}
	}

	diff := c.newDifficulty(p.Mods, *speedFlag)

	attr, err := reading.NewDifficultyCalculator(table).CalculateSingle(ctx, c.Objects, diff)
	if err != nil {
		return err
	}

	if *ppReplay == "" {
		p.Score.MaxCombo = *ppCombo
		p.Score.CountOk = *ppOk
		p.Score.CountMeh = *ppMeh
		p.Score.CountMiss = *ppMiss

		p.Score.CountGreat = *ppGreat
		if p.Score.CountGreat < 0 {
			p.Score.CountGreat = max(0, attr.ObjectCount-p.Score.CountOk-p.Score.CountMeh-p.Score.CountMiss)
		}
	}

	result, err := reading.NewPPCalculator(table).Calculate(ctx, attr, p.Score, diff)
	if err != nil {
		return err
	}

	if p.Score.MaxCombo < 0 {
		p.Score.MaxCombo = attr.MaxCombo
	}

	renderAttributes(os.Stdout, attr)
	renderPerformance(os.Stdout, p.Score, result)

	return nil
}

func runBatch(ctx context.Context, table *tuning.Table, logger *log.Logger) error {
	modSets := make([]difficulty.Modifier, 0, len(*batchModSets))

	for _, s := range *batchModSets {
		mods, err := difficulty.ParseMods(s)
		if err != nil {
			return err
		}

		modSets = append(modSets, mods)
	}

	reg := prometheus.NewRegistry()

	options := batch.Options{
		Workers: *batchWorkers,
		Metrics: batch.NewMetrics(reg),
	}

	calc := reading.NewDifficultyCalculator(table)

	if *batchCache != "" {
		store, err := cache.Open(*batchCache)
		if err != nil {
			return err
		}
		defer store.Close()

		if *batchPurge {
			removed, err := store.Purge(ctx, calc.GetVersion())
			if err != nil {
				return err
			}

			logger.Printf("Purged %d outdated cache entries", removed)
		}

		options.Store = store
	}

	if *batchMetrics != "" {
		server := &http.Server{
			Addr:              *batchMetrics,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Println("Metrics server failed:", err)
			}
		}()

		defer server.Close()
	}

	jobs := make([]batch.Job, 0, len(*batchCharts)*len(modSets))

	for _, path := range *batchCharts {
		c, err := loadChart(path)
		if err != nil {
			return err
		}

		for _, mods := range modSets {
			jobs = append(jobs, batch.Job{
				ChartID: c.ID,
				Objects: c.Objects,
				Diff:    c.newDifficulty(mods, *speedFlag),
			})
		}
	}

	runner := batch.NewRunner(calc, options)

	logger.Printf("Calculating %d jobs on %d workers", len(jobs), runner.Workers())

	results, err := runner.Run(ctx, jobs)
	if err != nil {
		return err
	}

	renderBatch(os.Stdout, results)

	return nil
}
