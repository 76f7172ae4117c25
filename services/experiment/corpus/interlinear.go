// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Column layout of the interlinear full-words file.
const (
	colWord     = 0
	colFolio    = 2
	colLanguage = 6
	colLineNum  = 11
)

var (
	folioPattern = regexp.MustCompile(`^f(\d+)([rv]?)`)
	evaWord      = regexp.MustCompile(`^[a-z0-9]+$`)
)

// LoadInterlinear reconstructs manuscript lines from the interlinear
// full-words file, filtered by Currier language.
//
// Description:
//
//	Words are grouped by (folio, line number), ordered by natural folio
//	sort (f2r before f10r, recto before verso) then numeric line order,
//	and filtered down to clean EVA words. Null and malformed records are
//	skipped, matching the tolerant parse of the transcription source.
//
// Inputs:
//
//	path - Interlinear file. Comma- or tab-delimited with a header row.
//	language - Currier language to keep, "A" or "B".
//
// Outputs:
//
//	*Corpus - Ordered, immutable line collection.
//	error - Non-nil when the file is missing or has no usable lines.
func LoadInterlinear(path, language string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open interlinear file: %w", err)
	}
	defer f.Close()

	// Sniff the delimiter from the header row: the source distribution has
	// shipped both comma- and tab-separated variants.
	header := make([]byte, 4096)
	n, err := f.Read(header)
	if err != nil {
		return nil, fmt.Errorf("read interlinear header: %w", err)
	}
	comma := ','
	if strings.Contains(strings.SplitN(string(header[:n]), "\n", 2)[0], "\t") {
		comma = '\t'
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewind interlinear file: %w", err)
	}

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse interlinear file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("interlinear file %s has no data rows", path)
	}

	type key struct {
		folio string
		line  string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, row := range records[1:] {
		if len(row) <= colLineNum {
			continue
		}
		word := strings.Trim(strings.TrimSpace(row[colWord]), `"`)
		folio := strings.TrimSpace(row[colFolio])
		lang := strings.TrimSpace(row[colLanguage])
		lineNum := strings.TrimSpace(row[colLineNum])

		if lang != language || word == "" || word == "null" {
			continue
		}
		if !evaWord.MatchString(word) {
			continue
		}

		k := key{folio: folio, line: lineNum}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], word)
	}

	sort.SliceStable(order, func(i, j int) bool {
		fi, si := folioSortKey(order[i].folio)
		fj, sj := folioSortKey(order[j].folio)
		if fi != fj {
			return fi < fj
		}
		if si != sj {
			return si < sj
		}
		return lineSortKey(order[i].line) < lineSortKey(order[j].line)
	})

	c := &Corpus{Language: language}
	for _, k := range order {
		c.Lines = append(c.Lines, Line{
			Folio:  k.folio,
			Number: k.line,
			Index:  len(c.Lines),
			Tokens: grouped[k],
		})
	}
	if len(c.Lines) == 0 {
		return nil, fmt.Errorf("interlinear file %s has no lines for language %q", path, language)
	}
	return c, nil
}

// folioSortKey orders folios naturally: f1r < f1v < f2r < f10r.
func folioSortKey(folio string) (int, string) {
	m := folioPattern.FindStringSubmatch(folio)
	if m == nil {
		return 1 << 30, folio
	}
	page, _ := strconv.Atoi(m[1])
	return page, m[2] // "r" sorts before "v" lexicographically
}

// lineSortKey parses a line number, tolerating fractional insertions
// like "14.1". Unparseable numbers sort last.
func lineSortKey(line string) float64 {
	v, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 1e9
	}
	return v
}
