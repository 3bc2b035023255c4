package view

// findWordWrapBreak returns the offset just past the last whitespace
// unit in units[start:overflow], so trailing blanks stay on the line.
func findWordWrapBreak(units []wrapUnit, start, overflow int) (int, bool) {
	start = maxInt(start, 0)
	overflow = minInt(overflow, len(units))
	for i := overflow - 1; i >= start; i-- {
		if units[i].isWhitespace {
			return i + 1, true
		}
	}
	return 0, false
}

// adjustBreakForLeadingPunctuation moves a hard break back so that a
// continuation line does not begin with punctuation: the preceding
// char is carried over with it.
func adjustBreakForLeadingPunctuation(units []wrapUnit, start, overflow int) int {
	end := overflow
	for end > start+1 && end < len(units) && units[end].isPunct {
		end--
	}
	if end < len(units) && units[end].isPunct {
		return overflow
	}
	return end
}
