package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/wieku/rplpa"

	"github.com/Givikap120/danser-pp/app/beatmap/difficulty"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
)

var errUnsupportedMode = errors.New("only osu!standard replays are supported")

type play struct {
	Player string
	Mods   difficulty.Modifier
	Score  api.PerfScore
}

func loadReplay(path string) (*play, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}

	replay, err := rplpa.ParseReplay(data)
	if err != nil {
		return nil, fmt.Errorf("parse replay %s: %w", path, err)
	}

	return playFromReplay(replay)
}

func playFromReplay(replay *rplpa.Replay) (*play, error) {
	if replay.PlayMode != 0 {
		return nil, fmt.Errorf("%w: mode %d", errUnsupportedMode, replay.PlayMode)
	}

	return &play{
		Player: replay.Username,
		Mods:   difficulty.Modifier(replay.Mods),
		Score: api.PerfScore{
			MaxCombo:   int(replay.MaxCombo),
			CountGreat: int(replay.Count300),
			CountOk:    int(replay.Count100),
			CountMeh:   int(replay.Count50),
			CountMiss:  int(replay.CountMiss),
		},
	}, nil
}
