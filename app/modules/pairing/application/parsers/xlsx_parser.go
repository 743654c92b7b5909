// Package parsers turns uploaded pairing spreadsheets into proposed
// rooms. Only XLSX is supported; tab coordinators export it from every
// tool we have seen.
package parsers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetRow is one parsed room before name resolution.
type SheetRow struct {
	RoomName         string
	PropositionName  string
	OppositionName   string
	JudgeNames       []string
	HeadJudgeName    string
	IsPublicSpeaking bool
}

// Column headers recognized in the first row, case-insensitive.
const (
	headerRoom        = "room"
	headerProposition = "proposition"
	headerOpposition  = "opposition"
	headerJudges      = "judges"
	headerHeadJudge   = "head judge"
)

// byeMarker in the opposition column marks a public-speaking room.
const byeMarker = "public speaking"

// ParsePairingSheet reads the first sheet of an XLSX workbook into
// rows. Judges are semicolon-separated within their cell.
func ParsePairingSheet(data []byte) ([]SheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheets[0])
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	parsed := make([]SheetRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cell := func(header string) string {
			idx, ok := columns[header]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		roomName := cell(headerRoom)
		if roomName == "" {
			continue
		}

		opposition := cell(headerOpposition)
		sheetRow := SheetRow{
			RoomName:        roomName,
			PropositionName: cell(headerProposition),
			OppositionName:  opposition,
			HeadJudgeName:   cell(headerHeadJudge),
		}
		if strings.EqualFold(opposition, byeMarker) {
			sheetRow.IsPublicSpeaking = true
			sheetRow.OppositionName = ""
		}

		for _, judgeName := range strings.Split(cell(headerJudges), ";") {
			judgeName = strings.TrimSpace(judgeName)
			if judgeName != "" {
				sheetRow.JudgeNames = append(sheetRow.JudgeNames, judgeName)
			}
		}

		if sheetRow.PropositionName == "" {
			return nil, fmt.Errorf("row %d: room %s has no proposition team", i+2, roomName)
		}

		parsed = append(parsed, sheetRow)
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("sheet %q contains no rooms", sheets[0])
	}
	return parsed, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{headerRoom, headerProposition, headerOpposition, headerJudges} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("sheet is missing the %q column", required)
		}
	}
	return columns, nil
}
