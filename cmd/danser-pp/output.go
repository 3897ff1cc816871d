package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/api"
	"github.com/Givikap120/danser-pp/app/rulesets/osu/performance/batch"
)

func formatValue(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func modsString(attr api.Attributes) string {
	if s := attr.Mods.String(); s != "" {
		return s
	}

	return "NM"
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	return table
}

func renderAttributes(w io.Writer, attr api.Attributes) {
	table := newTable(w, "Attribute", "Value")

	table.AppendBulk([][]string{
		{"Mods", modsString(attr)},
		{"Clock rate", formatValue(attr.ClockRate)},
		{"Stars", formatValue(attr.Total)},
		{"Aim", formatValue(attr.Aim)},
		{"Speed", formatValue(attr.Speed)},
		{"Flashlight", formatValue(attr.Flashlight)},
		{"Reading (low AR)", formatValue(attr.ReadingDifficultyLowAR)},
		{"Reading (high AR)", formatValue(attr.ReadingDifficultyHighAR)},
		{"Hidden", formatValue(attr.HiddenDifficulty)},
		{"Slider factor", formatValue(attr.SliderFactor)},
		{"Speed notes", formatValue(attr.SpeedNoteCount)},
		{"AR", formatValue(attr.ApproachRate)},
		{"OD", formatValue(attr.OverallDifficulty)},
		{"Objects", humanize.Comma(int64(attr.ObjectCount))},
		{"Circles / sliders / spinners", fmt.Sprintf("%s / %s / %s", humanize.Comma(int64(attr.Circles)), humanize.Comma(int64(attr.Sliders)), humanize.Comma(int64(attr.Spinners)))},
		{"Max combo", humanize.Comma(int64(attr.MaxCombo))},
	})

	table.Render()
}

func renderPerformance(w io.Writer, score api.PerfScore, result api.PPv2Results) {
	table := newTable(w, "Component", "PP")

	ur := "n/a"
	if result.EstimatedUnstableRate != nil {
		ur = formatValue(*result.EstimatedUnstableRate)
	}

	table.AppendBulk([][]string{
		{"Aim", formatValue(result.Aim)},
		{"Speed", formatValue(result.Speed)},
		{"Accuracy", formatValue(result.Acc)},
		{"Flashlight", formatValue(result.Flashlight)},
		{"Reading", formatValue(result.Reading)},
	})

	table.SetFooter([]string{"Total", formatValue(result.Total)})
	table.Render()

	fmt.Fprintf(w, "Accuracy %s%%, combo %s, misses %s (effective %s), estimated UR %s\n",
		formatValue(score.Accuracy()*100),
		humanize.Comma(int64(score.MaxCombo)),
		humanize.Comma(int64(score.CountMiss)),
		formatValue(result.EffectiveMissCount),
		ur,
	)
}

func renderStep(w io.Writer, steps []api.Attributes) {
	table := newTable(w, "Objects", "Stars", "Aim", "Speed")

	for _, attr := range steps {
		table.Append([]string{
			humanize.Comma(int64(attr.ObjectCount)),
			formatValue(attr.Total),
			formatValue(attr.Aim),
			formatValue(attr.Speed),
		})
	}

	table.Render()
}

func renderPeaks(w io.Writer, peaks api.StrainPeaks, sectionLength float64) {
	table := newTable(w, "Section", "Aim", "Speed", "Flashlight", "Stars")

	for i := range peaks.Total {
		table.Append([]string{
			humanize.Comma(int64(float64(i) * sectionLength)),
			formatValue(peaks.Aim[i]),
			formatValue(peaks.Speed[i]),
			formatValue(peaks.Flashlight[i]),
			formatValue(peaks.Total[i]),
		})
	}

	table.Render()
}

func renderBatch(w io.Writer, results []batch.Result) {
	table := newTable(w, "Chart", "Mods", "Stars", "Aim", "Speed", "Cached", "Error")

	for _, res := range results {
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}

		table.Append([]string{
			res.ChartID,
			modsString(res.Attributes),
			formatValue(res.Attributes.Total),
			formatValue(res.Attributes.Aim),
			formatValue(res.Attributes.Speed),
			fmt.Sprint(res.Cached),
			errText,
		})
	}

	table.Render()
}
