package spans

import (
	"bytes"
)

// fallbackSpan recovers a function span by text inspection when parsing
// failed: scan backward from the anchor for a "fn " header, then count
// braces forward from it. Both directions are bounded so a truncated file
// cannot send the scan to the end of a large buffer.
func fallbackSpan(buf []byte, offsets []int, anchorLine, scanLines, maxBodyLines int) (start, end int, ok bool) {
	lastLine := len(offsets) - 1
	if anchorLine > lastLine {
		return 0, 0, false
	}

	headerLine := -1
	lowest := anchorLine - scanLines
	if lowest < 0 {
		lowest = 0
	}
	for line := anchorLine; line >= lowest; line-- {
		if bytes.Contains(lineText(buf, offsets, line), []byte("fn ")) {
			headerLine = line
			break
		}
	}
	if headerLine < 0 {
		return 0, 0, false
	}

	limit := headerLine + maxBodyLines
	if limit > lastLine {
		limit = lastLine
	}

	depth := 0
	opened := false
	endLine := limit
scan:
	for line := headerLine; line <= limit; line++ {
		for _, b := range lineText(buf, offsets, line) {
			switch b {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
				if opened && depth <= 0 {
					endLine = line
					break scan
				}
			case ';':
				if !opened {
					// Bodyless signature.
					endLine = line
					break scan
				}
			}
		}
	}

	return extendUpward(buf, offsets, headerLine), endLine, true
}
