package difficulty

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Modifier int64

const (
	None        Modifier = 0
	NoFail      Modifier = 1 << 0
	Easy        Modifier = 1 << 1
	TouchDevice Modifier = 1 << 2
	Hidden      Modifier = 1 << 3
	HardRock    Modifier = 1 << 4
	SuddenDeath Modifier = 1 << 5
	DoubleTime  Modifier = 1 << 6
	Relax       Modifier = 1 << 7
	HalfTime    Modifier = 1 << 8
	Nightcore   Modifier = 1 << 9 // always used with DT : 512 + 64 = 576
	Flashlight  Modifier = 1 << 10
	Autoplay    Modifier = 1 << 11
	SpunOut     Modifier = 1 << 12
	Relax2      Modifier = 1 << 13 // Autopilot
	Perfect     Modifier = 1 << 14
	ScoreV2     Modifier = 1 << 29
	Daycore     Modifier = 1 << 30
	Lazer       Modifier = 1 << 33

	Autopilot = Relax2

	// DifficultyAdjustMask is the set of mods that change star rating
	DifficultyAdjustMask = Easy | TouchDevice | Hidden | HardRock | DoubleTime | Relax | HalfTime | Flashlight | Relax2
)

var modsString = [...]string{
	"NF",
	"EZ",
	"TD",
	"HD",
	"HR",
	"SD",
	"DT",
	"RX",
	"HT",
	"NC",
	"FL",
	"AT",
	"SO",
	"AP",
	"PF",
}

var extendedMods = map[string]Modifier{
	"V2": ScoreV2,
	"DC": Daycore,
	"CL": None,
	"LZ": Lazer,
}

func (mods Modifier) Active(mod Modifier) bool {
	return mods&mod == mod
}

// GetDiffMaskedMods keeps only the mods that affect difficulty calculation
func GetDiffMaskedMods(mods Modifier) Modifier {
	return mods & DifficultyAdjustMask
}

func (mods Modifier) String() string {
	var r []string

	for i, v := range modsString {
		if mods&(1<<uint(i)) == 0 {
			continue
		}

		if (v == "DT" && mods.Active(Nightcore)) || (v == "SD" && mods.Active(Perfect)) {
			continue
		}

		r = append(r, v)
	}

	if mods.Active(Daycore) {
		r = append(r, "DC")
	}

	if mods.Active(ScoreV2) {
		r = append(r, "V2")
	}

	if mods.Active(Lazer) {
		r = append(r, "LZ")
	}

	return strings.Join(r, "")
}

// ParseMods reads an acronym list such as "HDDT", "hd,dt" or "+HD HR".
func ParseMods(s string) (Modifier, error) {
	s = cases.Upper(language.Und).String(s)
	s = strings.NewReplacer(",", "", " ", "", "+", "").Replace(s)

	if len(s)%2 != 0 {
		return None, fmt.Errorf("invalid mod string %q", s)
	}

	mods := None

	for i := 0; i < len(s); i += 2 {
		acronym := s[i : i+2]

		if acronym == "NM" {
			continue
		}

		mod, ok := lookupMod(acronym)
		if !ok {
			return None, fmt.Errorf("unknown mod %q", acronym)
		}

		mods |= mod
	}

	if mods.Active(Nightcore) {
		mods |= DoubleTime
	}

	if mods.Active(Perfect) {
		mods |= SuddenDeath
	}

	if mods.Active(Daycore) {
		mods |= HalfTime
	}

	return mods, nil
}

func lookupMod(acronym string) (Modifier, bool) {
	for i, v := range modsString {
		if v == acronym {
			return Modifier(1) << uint(i), true
		}
	}

	mod, ok := extendedMods[acronym]

	return mod, ok
}
