package core

import "strings"

// ExportRow is one flat record of the tabular ledger export. Field order
// matches the external CSV contract. A goal without contributions emits a
// single placeholder row with empty contributor fields.
type ExportRow struct {
	GoalName      string
	Target        Money
	Current       Money
	Status        GoalStatus
	CreatedDate   Date
	CompletedDate Date
	Contributor   string
	Amount        Money
	Date          Date
}

// ExportRows flattens the goal collection into export records: one row
// per (goal, contribution) pair, and exactly one placeholder row for a
// goal with no contributions.
func ExportRows(goals []Goal) []ExportRow {
	var rows []ExportRow
	for _, g := range goals {
		base := ExportRow{
			GoalName:      g.Name,
			Target:        g.Target,
			Current:       g.Current,
			Status:        g.Status,
			CreatedDate:   g.CreatedDate,
			CompletedDate: g.CompletedDate,
		}
		if len(g.Contributions) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, c := range g.Contributions {
			row := base
			row.Contributor = c.Name
			row.Amount = c.Amount
			row.Date = c.Date
			rows = append(rows, row)
		}
	}
	return rows
}

// CSVHeader is the first line of the rendered export.
const CSVHeader = "Goal Name,Target,Current,Status,Created Date,Completed Date,Participant,Contribution Amount,Contribution Date"

// RenderCSV renders export rows into the exact textual payload external
// consumers expect: text fields double-quoted, numeric fields unquoted,
// one row per newline. Placeholder rows render their contributor fields
// as quoted empty strings.
func RenderCSV(rows []ExportRow) []byte {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(quote(r.GoalName))
		b.WriteByte(',')
		b.WriteString(r.Target.DecimalString())
		b.WriteByte(',')
		b.WriteString(r.Current.DecimalString())
		b.WriteByte(',')
		b.WriteString(quote(string(r.Status)))
		b.WriteByte(',')
		b.WriteString(quote(r.CreatedDate.ISO()))
		b.WriteByte(',')
		b.WriteString(quote(r.CompletedDate.ISO()))
		b.WriteByte(',')
		b.WriteString(quote(r.Contributor))
		b.WriteByte(',')
		if r.Contributor == "" {
			b.WriteString(`""`)
		} else {
			b.WriteString(r.Amount.DecimalString())
		}
		b.WriteByte(',')
		if r.Contributor == "" {
			b.WriteString(`""`)
		} else {
			b.WriteString(quote(r.Date.ISO()))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
