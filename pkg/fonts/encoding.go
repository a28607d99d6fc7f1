package fonts

// The document encoding is the single-byte Windows-1252 layout, the
// same one the embedded font dictionaries declare. Text is encoded to
// it before both measurement and drawing so the two can never disagree.

// encodeSpecials maps the runes whose Windows-1252 codes differ from
// Latin-1, all in the 0x80..0x9F block.
var encodeSpecials = map[rune]byte{
	'€': 0x80, // euro sign
	'‚': 0x82,
	'ƒ': 0x83,
	'„': 0x84,
	'…': 0x85, // ellipsis
	'†': 0x86,
	'‡': 0x87,
	'ˆ': 0x88,
	'‰': 0x89,
	'Š': 0x8A,
	'‹': 0x8B,
	'Œ': 0x8C,
	'Ž': 0x8E,
	'‘': 0x91, // left single quote
	'’': 0x92, // right single quote
	'“': 0x93, // left double quote
	'”': 0x94, // right double quote
	'•': 0x95, // bullet
	'–': 0x96, // en dash
	'—': 0x97, // em dash
	'˜': 0x98,
	'™': 0x99, // trade mark
	'š': 0x9A,
	'›': 0x9B,
	'œ': 0x9C,
	'ž': 0x9E,
	'Ÿ': 0x9F,
}

// decodeSpecials is the inverse of encodeSpecials, indexed by code-0x80.
var decodeSpecials = [32]rune{
	0x00: '€',
	0x02: '‚',
	0x03: 'ƒ',
	0x04: '„',
	0x05: '…',
	0x06: '†',
	0x07: '‡',
	0x08: 'ˆ',
	0x09: '‰',
	0x0A: 'Š',
	0x0B: '‹',
	0x0C: 'Œ',
	0x0E: 'Ž',
	0x11: '‘',
	0x12: '’',
	0x13: '“',
	0x14: '”',
	0x15: '•',
	0x16: '–',
	0x17: '—',
	0x18: '˜',
	0x19: '™',
	0x1A: 'š',
	0x1B: '›',
	0x1C: 'œ',
	0x1E: 'ž',
	0x1F: 'Ÿ',
}

// Encode maps s onto the document encoding. Characters with no slot
// become '?', so nothing ever disappears silently from a rendered page.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 0x20 && r <= 0x7E:
			out = append(out, byte(r))
		case r >= 0xA0 && r <= 0xFF:
			out = append(out, byte(r))
		default:
			if b, ok := encodeSpecials[r]; ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
	}
	return out
}

// decodeByte returns the rune for a document encoding code, or 0 when
// the code has no assignment.
func decodeByte(b byte) rune {
	switch {
	case b >= 0x20 && b <= 0x7E:
		return rune(b)
	case b >= 0xA0:
		return rune(b)
	case b >= 0x80 && b <= 0x9F:
		return decodeSpecials[b-0x80]
	default:
		return 0
	}
}
