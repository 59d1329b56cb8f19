package sheets

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tecace/axpro-metrics/internal/aggregates"
)

var (
	// ErrEmptySheet is returned when the payload holds no lines at all.
	ErrEmptySheet = errors.New("sheet is empty")
	// ErrNoValidRows is returned when no data line survives validation.
	ErrNoValidRows = errors.New("sheet has no valid rows")
)

const placeholderDate = "0000-00-00"

// columns maps each row field to the header names that may carry it.
var columns = struct {
	date, toxicity, injection, correctness, relevancy, length, tone []string
}{
	date:        []string{"Date", "date"},
	toxicity:    []string{"Toxicity"},
	injection:   []string{"Prompt Injection", "PromptInjection"},
	correctness: []string{"Answer Correctness", "Correctness"},
	relevancy:   []string{"Answer Relevancy", "Relevancy"},
	length:      []string{"Length"},
	tone:        []string{"Tone"},
}

// Parse reads a CSV export whose first line names the columns. Fields are
// split on commas and stripped of quotes; lines shorter than the header or
// whose date is not a valid YYYY-MM-DD are skipped. Rows come back sorted by date.
func Parse(r io.Reader) ([]aggregates.DailyRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		header []string
		rows   []aggregates.DailyRow
	)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line)
		if header == nil {
			header = fields
			continue
		}
		if row, ok := parseRecord(header, fields); ok {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if header == nil {
		return nil, ErrEmptySheet
	}
	if len(rows) == 0 {
		return nil, ErrNoValidRows
	}
	return aggregates.SortRows(rows), nil
}

func splitLine(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(strings.TrimSpace(f), `"`, "")
	}
	return fields
}

func parseRecord(header, fields []string) (aggregates.DailyRow, bool) {
	if len(fields) < len(header) || fields[0] == "" {
		return aggregates.DailyRow{}, false
	}
	record := make(map[string]string, len(header))
	for i, name := range header {
		record[name] = fields[i]
	}

	date := lookup(record, columns.date)
	if len(date) > 10 {
		date = date[:10]
	}
	if date == "" || date == placeholderDate {
		return aggregates.DailyRow{}, false
	}
	if _, err := aggregates.ParseDate(date); err != nil {
		return aggregates.DailyRow{}, false
	}

	row := aggregates.DailyRow{
		Date:              date,
		Toxicity:          number(lookup(record, columns.toxicity)),
		PromptInjection:   number(lookup(record, columns.injection)),
		AnswerCorrectness: number(lookup(record, columns.correctness)),
		AnswerRelevancy:   number(lookup(record, columns.relevancy)),
		Length:            number(lookup(record, columns.length)),
		Tone:              number(lookup(record, columns.tone)),
	}
	return row.Clamped(), true
}

// lookup returns the first non-empty value among the synonym columns.
func lookup(record map[string]string, names []string) string {
	for _, name := range names {
		if v := record[name]; v != "" {
			return v
		}
	}
	return ""
}

// number coerces a cell to a float. Blank or malformed cells read as zero.
func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}
