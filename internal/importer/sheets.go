package importer

import "strings"

// Sheet is one worksheet: a name and its rows of cells (column 0 = subject,
// column 1 = item title, other columns ignored)
type Sheet struct {
	Name string
	Rows [][]string
}

// Row is a (subject, title) pair extracted from a sheet
type Row struct {
	Subject string
	Title   string
	// Line is the 1-based row number in the sheet
	Line int
}

// Group is the data of one sheet, destined to one university
type Group struct {
	University string
	Rows       []Row
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return NormalizeText(row[col])
}

// isHeader detects the header and legend rows of the production workbooks
func isHeader(subject, title string) bool {
	s, t := fold(subject), fold(title)
	return strings.HasPrefix(s, "mati") ||
		strings.Contains(t, "fiches de cours actualisees") ||
		strings.HasPrefix(t, "fiches de cours") ||
		(strings.Contains(s, "mati") && strings.Contains(t, "fiche"))
}

// ExtractRows turns the rows of one sheet into (subject, title) pairs.
// A row without a subject inherits the last subject seen above it.
func ExtractRows(rows [][]string) []Row {
	var (
		out         []Row
		lastSubject string
	)
	for i, raw := range rows {
		subject := cell(raw, 0)
		title := cell(raw, 1)
		if isHeader(subject, title) {
			continue
		}
		if subject == "" && title != "" && lastSubject != "" {
			subject = lastSubject
		}
		if subject != "" {
			lastSubject = subject
		}
		if title != "" && subject != "" {
			out = append(out, Row{Subject: subject, Title: title, Line: i + 1})
		}
	}
	return out
}

// ExtractSheets keeps the sheets that yield at least one row
func ExtractSheets(sheets []Sheet) []Group {
	var groups []Group
	for _, sh := range sheets {
		name := NormalizeText(sh.Name)
		if name == "" {
			continue
		}
		rows := ExtractRows(sh.Rows)
		if len(rows) == 0 {
			continue
		}
		groups = append(groups, Group{University: name, Rows: rows})
	}
	return groups
}
