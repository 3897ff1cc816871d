package difficulty

import (
	"math"
)

const HitFadeIn = 400.0

type Difficulty struct {
	baseHP, baseCS, baseOD, baseAR float64

	hp, cs, od, ar float64

	Mods Modifier

	// CircleRadiusU is the radius of the circle in osu!pixels
	CircleRadiusU float64

	// PreemptU is the time in ms (chart time) an object is visible before its hit time
	PreemptU   float64
	TimeFadeIn float64

	// Hit windows in chart time, each one is the distance from the object's time to the window's edge
	Hit300U float64
	Hit100U float64
	Hit50U  float64

	// ARReal and ODReal are the values adjusted by the clock rate
	ARReal float64
	ODReal float64

	Speed       float64
	customSpeed float64
}

func NewDifficulty(hp, cs, od, ar float64) *Difficulty {
	diff := &Difficulty{
		baseHP: hp,
		baseCS: cs,
		baseOD: od,
		baseAR: ar,
	}

	diff.calculate()

	return diff
}

func (diff *Difficulty) calculate() {
	hp, cs, od, ar := diff.baseHP, diff.baseCS, diff.baseOD, diff.baseAR

	if diff.CheckModActive(HardRock) {
		ar = math.Min(ar*1.4, 10)
		cs = math.Min(cs*1.3, 10)
		od = math.Min(od*1.4, 10)
		hp = math.Min(hp*1.4, 10)
	}

	if diff.CheckModActive(Easy) {
		ar /= 2
		cs /= 2
		od /= 2
		hp /= 2
	}

	diff.hp, diff.cs, diff.od, diff.ar = hp, cs, od, ar

	diff.CircleRadiusU = 54.4 - 4.48*cs

	diff.PreemptU = DifficultyRate(ar, 1800, 1200, 450)
	diff.TimeFadeIn = HitFadeIn * math.Min(1, diff.PreemptU/450)

	if diff.CheckModActive(Hidden) {
		diff.TimeFadeIn = diff.PreemptU * 0.4
	}

	diff.Hit300U = DifficultyRate(od, 80, 50, 20)
	diff.Hit100U = DifficultyRate(od, 140, 100, 60)
	diff.Hit50U = DifficultyRate(od, 200, 150, 100)

	diff.Speed = diff.GetModifiedSpeed()

	diff.ARReal = DiffFromRate(diff.PreemptU/diff.Speed, 1800, 1200, 450)
	diff.ODReal = (80 - diff.Hit300U/diff.Speed) / 6
}

func (diff *Difficulty) SetMods(mods Modifier) {
	diff.Mods = mods
	diff.calculate()
}

func (diff *Difficulty) CheckModActive(mods Modifier) bool {
	return diff.Mods&mods > 0
}

// SetCustomSpeed overrides the clock rate implied by the mods, 0 restores the default
func (diff *Difficulty) SetCustomSpeed(speed float64) {
	diff.customSpeed = speed
	diff.calculate()
}

func (diff *Difficulty) GetModifiedSpeed() float64 {
	if diff.customSpeed > 0 {
		return diff.customSpeed
	}

	switch {
	case diff.Mods.Active(Nightcore), diff.Mods.Active(DoubleTime):
		return 1.5
	case diff.Mods.Active(Daycore), diff.Mods.Active(HalfTime):
		return 0.75
	default:
		return 1
	}
}

func (diff *Difficulty) GetHP() float64 { return diff.hp }
func (diff *Difficulty) GetCS() float64 { return diff.cs }
func (diff *Difficulty) GetOD() float64 { return diff.od }
func (diff *Difficulty) GetAR() float64 { return diff.ar }

func (diff *Difficulty) GetBaseHP() float64 { return diff.baseHP }
func (diff *Difficulty) GetBaseCS() float64 { return diff.baseCS }
func (diff *Difficulty) GetBaseOD() float64 { return diff.baseOD }
func (diff *Difficulty) GetBaseAR() float64 { return diff.baseAR }

// DifficultyRate maps a 0-10 difficulty value onto a range defined by its values at 0, 5 and 10
func DifficultyRate(diff, min, mid, max float64) float64 {
	if diff > 5 {
		return mid + (max-mid)*(diff-5)/5
	}

	if diff < 5 {
		return mid - (mid-min)*(5-diff)/5
	}

	return mid
}

// DiffFromRate is the inverse of DifficultyRate
func DiffFromRate(rate, min, mid, max float64) float64 {
	minStep := (min - mid) / 5
	maxStep := (mid - max) / 5

	if rate > mid {
		return -(rate - min) / minStep
	}

	return 5.0 - (rate-mid)/maxStep
}
