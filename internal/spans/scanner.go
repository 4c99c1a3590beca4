package spans

// Token-level scanner for Verus item lists. tree-sitter's Rust grammar sees
// the body of a verus!{} invocation as an opaque token tree, so function
// items inside it are recovered here instead: the scanner walks tokens,
// skipping comments, strings, and char literals, and records every `fn`
// item it meets, including Verus's proof/spec/exec flavors and nested
// functions.

// rawItem is a scanned function item in byte-offset terms.
type rawItem struct {
	kind      string
	name      string
	fnOffset  int // offset of the "fn" keyword
	endOffset int // offset of the closing brace or semicolon
}

// scanItems scans src[start:end) for function items. Items nested inside
// other items' bodies are reported too.
func scanItems(src []byte, start, end int) []rawItem {
	var items []rawItem
	prevIdent := ""
	i := start
	for {
		s, e, isIdent := nextToken(src, i, end)
		if s >= end {
			break
		}
		i = e
		if !isIdent {
			// Punctuation breaks a modifier sequence like "proof fn".
			prevIdent = ""
			continue
		}
		word := string(src[s:e])
		if word != "fn" {
			prevIdent = word
			continue
		}

		// A "fn" not followed by a name is a fn-pointer type, not an item.
		ns, ne, nameIsIdent := nextToken(src, i, end)
		if !nameIsIdent {
			prevIdent = ""
			continue
		}

		kind := "fn"
		switch prevIdent {
		case "proof", "spec", "exec":
			kind = prevIdent + " fn"
		}

		itemEnd, bodyOpen := signatureEnd(src, ne, end)
		items = append(items, rawItem{
			kind:      kind,
			name:      string(src[ns:ne]),
			fnOffset:  s,
			endOffset: itemEnd,
		})
		if bodyOpen >= 0 {
			items = append(items, scanItems(src, bodyOpen+1, itemEnd)...)
		}
		i = itemEnd + 1
		prevIdent = ""
	}
	return items
}

// signatureEnd scans past a function signature, returning the item's final
// byte offset and the body's opening-brace offset (-1 when the item is a
// bodyless signature ending in ';').
//
// Only parenthesis and bracket depth is tracked: Verus spec clauses sit
// between the signature and the body and freely use comparison operators,
// so angle brackets cannot be treated as nesting.
func signatureEnd(src []byte, from, end int) (itemEnd, bodyOpen int) {
	depth := 0
	i := from
	for {
		s, e, isIdent := nextToken(src, i, end)
		if s >= end {
			return end - 1, -1
		}
		i = e
		if isIdent {
			continue
		}
		switch src[s] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				return s, -1
			}
		case '{':
			if depth == 0 {
				close := matchBrace(src, s, end)
				if close < 0 {
					return end - 1, s
				}
				return close, s
			}
		}
	}
}

// matchBrace returns the offset of the brace closing the one at open, or -1
// when the region ends first.
func matchBrace(src []byte, open, end int) int {
	depth := 1
	i := open + 1
	for {
		s, e, isIdent := nextToken(src, i, end)
		if s >= end {
			return -1
		}
		i = e
		if isIdent {
			continue
		}
		switch src[s] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s
			}
		}
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// nextToken returns the next significant token in src[i:end): either an
// identifier-like word ([start,stop), isIdent true) or a single punctuation
// byte. Whitespace, comments, string literals, char literals, and lifetimes
// are skipped. start >= end signals the end of the region.
func nextToken(src []byte, i, end int) (start, stop int, isIdent bool) {
	for i < end {
		b := src[i]
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			i++
		case b == '/' && i+1 < end && src[i+1] == '/':
			for i < end && src[i] != '\n' {
				i++
			}
		case b == '/' && i+1 < end && src[i+1] == '*':
			i = skipBlockComment(src, i, end)
		case b == '"':
			i = skipString(src, i, end)
		case b == '\'':
			i = skipCharOrLifetime(src, i, end)
		case isIdentStart(b):
			j := i + 1
			for j < end && isIdentByte(src[j]) {
				j++
			}
			// "r", "b", and "br" immediately followed by a quote or hash
			// start a raw string literal, not an identifier.
			word := src[i:j]
			if isRawStringPrefix(word) && j < end && (src[j] == '"' || src[j] == '#') {
				if next := skipRawString(src, j, end); next > j {
					i = next
					continue
				}
			}
			return i, j, true
		case b >= '0' && b <= '9':
			j := i + 1
			for j < end && (isIdentByte(src[j]) || src[j] == '.') {
				j++
			}
			return i, j, true
		default:
			return i, i + 1, false
		}
	}
	return end, end, false
}

func isRawStringPrefix(word []byte) bool {
	switch string(word) {
	case "r", "b", "br":
		return true
	}
	return false
}

// skipBlockComment skips a possibly nested /* */ comment.
func skipBlockComment(src []byte, i, end int) int {
	depth := 0
	for i < end {
		if i+1 < end && src[i] == '/' && src[i+1] == '*' {
			depth++
			i += 2
			continue
		}
		if i+1 < end && src[i] == '*' && src[i+1] == '/' {
			depth--
			i += 2
			if depth == 0 {
				return i
			}
			continue
		}
		i++
	}
	return end
}

// skipString skips a regular string literal with escapes.
func skipString(src []byte, i, end int) int {
	i++ // opening quote
	for i < end {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return end
}

// skipRawString skips r"..."/r#"..."# given i at the first '#' or '"'.
// Returns i unchanged when this is not actually a raw string.
func skipRawString(src []byte, i, end int) int {
	hashes := 0
	j := i
	for j < end && src[j] == '#' {
		hashes++
		j++
	}
	if j >= end || src[j] != '"' {
		return i
	}
	j++
	for j < end {
		if src[j] == '"' {
			k := j + 1
			n := 0
			for k < end && src[k] == '#' && n < hashes {
				n++
				k++
			}
			if n == hashes {
				return k
			}
			j = k
			continue
		}
		j++
	}
	return end
}

// skipCharOrLifetime distinguishes 'x' char literals from 'a lifetimes:
// a quote closing within a couple of bytes (or after an escape) is a char
// literal; otherwise only the quote itself is consumed and the lifetime
// name passes through as an ordinary identifier.
func skipCharOrLifetime(src []byte, i, end int) int {
	if i+1 < end && src[i+1] == '\\' {
		j := i + 3 // past quote, backslash, escaped byte
		for j < end && src[j] != '\'' {
			j++
		}
		if j < end {
			return j + 1
		}
		return end
	}
	if i+2 < end && src[i+2] == '\'' {
		return i + 3
	}
	return i + 1
}
