// Package parse turns the mysql client's column listings into records.
// It accepts both the tab-separated batch output of `mysql -e` and the
// pipe-delimited ASCII tables of the interactive client.
package parse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tablestruct/tablestruct/internal/source"
)

// ErrNoRows reports that the input held no recognizable column rows.
var ErrNoRows = errors.New("no column rows recognized in input")

type lineClass int

const (
	classBlank lineClass = iota
	classSeparator
	classHeader
	classData
	classNoise
)

type state int

const (
	stateSeeking state = iota // before the header (or first data) line
	stateRows                 // consuming data rows
	stateTrailing             // blank seen after data; more rows still accepted
)

// typeToken matches the leading type name of a MySQL column type.
var typeToken = regexp.MustCompile(`^(?i)(tinyint|smallint|mediumint|bigint|int|integer|decimal|numeric|float|double|real|bit|bool|boolean|serial|date|datetime|timestamp|time|year|char|varchar|binary|varbinary|tinyblob|blob|mediumblob|longblob|tinytext|text|mediumtext|longtext|enum|set|json|uuid|geometry|geometrycollection|point|linestring|polygon|multipoint|multilinestring|multipolygon)\b`)

// multiSpace splits aligned space-padded output when no tabs are present.
var multiSpace = regexp.MustCompile(` {2,}`)

var headerWord = regexp.MustCompile(`\S+`)

// Read scans r line by line and parses the column listing.
func Read(r io.Reader) ([]source.ColumnRecord, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Columns(lines)
}

// Columns parses raw client output into ordered column records.
// Header rows, separator rows, and blank lines are consumed without
// producing records; anything else must look like a data row.
func Columns(lines []string) ([]source.ColumnRecord, error) {
	piped := detectPiped(lines)

	// Positions of the canonical headers, overridden by a header row.
	idx := map[string]int{}
	for i, h := range source.Headers {
		idx[h] = i
	}

	// In space-aligned output the header row fixes the column start
	// offsets; empty cells would otherwise collapse under gap splitting.
	var offsets []int

	var records []source.ColumnRecord
	st := stateSeeking
	for _, line := range lines {
		fields := splitLine(line, piped, offsets)
		switch classify(line, fields, piped) {
		case classBlank:
			if st == stateRows {
				st = stateTrailing
			}
		case classSeparator, classNoise:
			// skipped: grid borders, warnings, column-count mismatches
		case classHeader:
			if st == stateSeeking {
				idx = map[string]int{}
				for i, h := range fields {
					idx[h] = i
				}
				if !piped && !strings.Contains(line, "\t") {
					offsets = headerOffsets(line)
				}
			}
			st = stateRows
		case classData:
			records = append(records, buildRecord(fields, idx))
			st = stateRows
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

func detectPiped(lines []string) bool {
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		return strings.HasPrefix(t, "|") || strings.HasPrefix(t, "+")
	}
	return false
}

func splitLine(line string, piped bool, offsets []int) []string {
	t := strings.TrimSpace(line)
	if t == "" {
		return nil
	}
	if piped {
		if !strings.HasPrefix(t, "|") {
			return nil
		}
		t = strings.Trim(t, "|")
		parts := strings.Split(t, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	if len(offsets) > 0 {
		return sliceByOffsets(line, offsets)
	}
	return multiSpace.Split(t, -1)
}

// headerOffsets records where each header starts in a space-aligned
// header row, or nil when the row does not carry the canonical count.
func headerOffsets(line string) []int {
	var offs []int
	for _, m := range headerWord.FindAllStringIndex(line, -1) {
		offs = append(offs, m[0])
	}
	if len(offs) != len(source.Headers) {
		return nil
	}
	return offs
}

// sliceByOffsets cuts a data row at the header's column positions,
// keeping empty cells empty instead of collapsing them.
func sliceByOffsets(line string, offsets []int) []string {
	fields := make([]string, len(offsets))
	for i, start := range offsets {
		if start >= len(line) {
			continue
		}
		end := len(line)
		if i+1 < len(offsets) && offsets[i+1] < end {
			end = offsets[i+1]
		}
		fields[i] = strings.TrimSpace(line[start:end])
	}
	return fields
}

func classify(line string, fields []string, piped bool) lineClass {
	t := strings.TrimSpace(line)
	if t == "" {
		return classBlank
	}
	if piped && strings.HasPrefix(t, "+") {
		return classSeparator
	}
	if strings.Trim(t, "-+ ") == "" {
		return classSeparator
	}
	if len(fields) == 0 {
		return classNoise
	}
	if fields[0] == "Field" {
		return classHeader
	}
	if len(fields) == len(source.Headers) && typeToken.MatchString(fields[1]) {
		return classData
	}
	return classNoise
}

func buildRecord(fields []string, idx map[string]int) source.ColumnRecord {
	at := func(header string) string {
		i, ok := idx[header]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	rec := source.ColumnRecord{
		Field: at("Field"),
		Type:  at("Type"),
		Null:  at("Null"),
		Key:   at("Key"),
		Extra: at("Extra"),
	}
	if def := at("Default"); def != "NULL" {
		rec.Default = &def
	}
	return rec
}
