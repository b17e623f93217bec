// Package sheetcsv decodes the CSV export served by the spreadsheet and maps
// its rows onto domain records. The spreadsheet is the system of record, so
// the decoder must reproduce the export format exactly: RFC4180-style
// quoting with embedded commas, newlines and doubled quotes, carriage
// returns dropped, and no trimming of unquoted whitespace.
package sheetcsv

import "strings"

// Decode splits text into rows of fields with a two-state character machine.
// Outside quotes a comma ends the field, a newline ends the row and a `"`
// enters quoted mode. Inside quotes `""` emits a literal quote and a lone
// `"` exits. A trailing field or row without a final newline is flushed.
func Decode(text string) [][]string {
	var rows [][]string
	var current []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteByte(c)
			}
			continue
		}
		switch c {
		case '"':
			inQuotes = true
		case ',':
			current = append(current, field.String())
			field.Reset()
		case '\n':
			current = append(current, field.String())
			rows = append(rows, current)
			current = nil
			field.Reset()
		case '\r':
			// dropped
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(current) > 0 {
		current = append(current, field.String())
		rows = append(rows, current)
	}

	return rows
}
