package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerfScoreAccuracy(t *testing.T) {
	s := PerfScore{CountGreat: 90, CountOk: 6, CountMeh: 2, CountMiss: 2}

	assert.Equal(t, 100, s.TotalHits())
	assert.InDelta(t, (90*300+6*100+2*50)/30000.0, s.Accuracy(), 1e-12)
	assert.Equal(t, 0.0, PerfScore{}.Accuracy())
}

func TestPerfScoreValidate(t *testing.T) {
	assert.NoError(t, PerfScore{CountGreat: 10}.Validate(10))
	assert.ErrorIs(t, PerfScore{CountGreat: 11}.Validate(10), ErrInvalidJudgements)
	assert.ErrorIs(t, PerfScore{CountGreat: 5, CountMiss: -1}.Validate(10), ErrInvalidJudgements)
	assert.NoError(t, PerfScore{}.Validate(0))
}
