package clean

import (
	"github.com/sells-group/district-etl/internal/model"
)

// Education table columns.
const (
	ColTotal15Plus       = "Total_15Plus"
	ColHigherEducation   = "Higher_Education_Pct"
	ColIlliteratePct     = "Illiterate_Pct"
	ColPrimaryPct        = "Primary_Pct"
	ColJuniorPct         = "Junior_Pct"
	ColHighSchoolPct     = "HighSchool_Pct"
	ColJuniorCollegePct  = "JuniorCollege_Pct"
	ColCollegePct        = "College_Pct"
	ColGraduatePct       = "Graduate_Pct"
	educationCategoryCnt = 7
)

// educationCategories lists the attainment counts from least to most
// schooling. higher marks the categories counted as higher education.
var educationCategories = [educationCategoryCnt]struct {
	headers []string
	pct     string
	higher  bool
}{
	{[]string{"illiterate or selfstudy"}, ColIlliteratePct, false},
	{[]string{"edu_primary"}, ColPrimaryPct, false},
	{[]string{"edu_junior"}, ColJuniorPct, false},
	{[]string{"edu_highschool"}, ColHighSchoolPct, false},
	{[]string{"edu_junior_college"}, ColJuniorCollegePct, true},
	{[]string{"edu_college"}, ColCollegePct, true},
	{[]string{"edu_graudate", "edu_graduate"}, ColGraduatePct, true},
}

// CleanEducation reduces attainment counts to the population aged 15+, the
// share with higher education, and one percentage per category. Raw counts
// are not part of the output.
func CleanEducation(raw *model.Raw) (*Result, error) {
	colIdx := raw.ColumnIndex()
	if _, ok := colIdx[model.KeyColumn]; !ok {
		return nil, missingColumn(SourceEducation, model.KeyColumn)
	}
	var headers [educationCategoryCnt]string
	for i, cat := range educationCategories {
		h, ok := findCol(colIdx, cat.headers...)
		if !ok {
			return nil, missingColumn(SourceEducation, cat.headers[0])
		}
		headers[i] = h
	}

	cols := []string{model.KeyColumn, ColTotal15Plus, ColHigherEducation}
	for _, cat := range educationCategories {
		cols = append(cols, cat.pct)
	}

	t := model.NewTable(SourceEducation, cols...)
	stats := Stats{Source: SourceEducation, RowsRead: len(raw.Records)}

rows:
	for _, rec := range raw.Records {
		district := District(getCol(rec, colIdx, model.KeyColumn))
		if district == "" {
			stats.drop(DropEmptyDistrict)
			continue
		}

		var counts [educationCategoryCnt]float64
		var total, higher float64
		for i, h := range headers {
			f, ok := stats.parse(getCol(rec, colIdx, h)).Float()
			if !ok {
				stats.drop(DropMissingField)
				continue rows
			}
			counts[i] = f
			total += f
			if educationCategories[i].higher {
				higher += f
			}
		}
		if total == 0 {
			stats.drop(DropZeroTotal)
			continue
		}

		row := model.Row{
			model.KeyColumn:    model.Text(district),
			ColTotal15Plus:     model.Num(total),
			ColHigherEducation: model.Num(Round2(higher / total * 100)),
		}
		for i, cat := range educationCategories {
			row[cat.pct] = model.Num(Round2(counts[i] / total * 100))
		}
		t.Append(row)
	}

	if m, ok := mean(t, ColHigherEducation); ok {
		stats.metric("mean_"+ColHigherEducation, Round2(m))
	}
	if hi, lo, ok := extremes(t, ColHigherEducation); ok {
		stats.Metrics = append(stats.Metrics,
			Metric{Name: "highest_" + ColHigherEducation, Value: hi.value, Label: hi.district},
			Metric{Name: "lowest_" + ColHigherEducation, Value: lo.value, Label: lo.district},
		)
	}

	return finish(t, stats)
}

type extreme struct {
	district string
	value    float64
}

// extremes returns the first rows holding the largest and smallest value of col.
func extremes(t *model.Table, col string) (hi, lo extreme, ok bool) {
	for _, r := range t.Rows {
		f, isNum := r[col].Float()
		if !isNum {
			continue
		}
		if !ok {
			hi = extreme{r.Key(), f}
			lo = hi
			ok = true
			continue
		}
		if f > hi.value {
			hi = extreme{r.Key(), f}
		}
		if f < lo.value {
			lo = extreme{r.Key(), f}
		}
	}
	return hi, lo, ok
}
