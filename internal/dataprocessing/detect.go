package dataprocessing

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// decodePrefixLimit bounds how much of the upload is inspected when choosing
// an encoding and delimiter. Detection never needs the full payload.
const decodePrefixLimit = 64 * 1024

// DefaultSampleLines is the number of leading lines scored during delimiter
// detection when the caller does not override it.
const DefaultSampleLines = 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// delimiterCandidates in fixed priority order. The order is the tie-breaker
// when two delimiters score identically, so it is part of the contract.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DecodedCandidate is one encoding hypothesis for an upload, paired with the
// text it decodes to.
type DecodedCandidate struct {
	Encoding domain.Encoding
	Text     string
}

// DecodeCandidates returns the encoding hypotheses for the upload in trial
// order. The Latin-1 family maps every byte, so decoding alone can never
// reject those candidates; a candidate only truly "succeeds" once downstream
// schema validation accepts it, which is why callers walk the list in order.
//
// Trial policy: a UTF-8 BOM pins the encoding outright. Otherwise, when the
// bytes are unambiguously valid UTF-8 that interpretation is preferred for
// correctness, with the byte-transparent Latin-1 family as fallback in the
// fixed order Latin-1, ISO-8859-1, CP1252. Bytes that are not valid UTF-8
// get only the Latin-1 family.
func DecodeCandidates(raw []byte) ([]DecodedCandidate, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.NewFormatDetectionError("upload is empty", nil)
	}

	if bytes.HasPrefix(raw, utf8BOM) {
		body := raw[len(utf8BOM):]
		if utf8.Valid(prefix(body)) {
			return []DecodedCandidate{{Encoding: domain.EncodingUTF8BOM, Text: string(body)}}, nil
		}
		// BOM followed by non-UTF-8 bytes: fall through with the marker
		// stripped so the Latin-1 family does not garble the first header.
		raw = body
	}

	latinFamily := []DecodedCandidate{
		{Encoding: domain.EncodingLatin1, Text: decodeCharmap(charmap.ISO8859_1, raw)},
		{Encoding: domain.EncodingISO8859, Text: decodeCharmap(charmap.ISO8859_1, raw)},
		{Encoding: domain.EncodingCP1252, Text: decodeCharmap(charmap.Windows1252, raw)},
	}

	if utf8.Valid(prefix(raw)) {
		candidates := []DecodedCandidate{{Encoding: domain.EncodingUTF8, Text: string(raw)}}
		return append(candidates, latinFamily...), nil
	}
	return latinFamily, nil
}

func prefix(raw []byte) []byte {
	if len(raw) > decodePrefixLimit {
		return raw[:decodePrefixLimit]
	}
	return raw
}

func decodeCharmap(cm *charmap.Charmap, raw []byte) string {
	// Charmap decoders map every byte, so this cannot fail.
	out, _ := cm.NewDecoder().Bytes(raw)
	return string(out)
}

// delimiterScore captures how a candidate delimiter performed over the
// sampled lines: the modal per-line column count and how many lines agree
// with it.
type delimiterScore struct {
	delimiter  rune
	columns    int
	consistent int
}

func (s delimiterScore) betterThan(other delimiterScore) bool {
	if s.consistent != other.consistent {
		return s.consistent > other.consistent
	}
	return s.columns > other.columns
}

// DetectDelimiter scores the candidate delimiters by column-count consistency
// across the first sampleLines non-blank lines and returns the winner. Ties
// break by the fixed priority order comma, semicolon, tab, pipe. A delimiter
// must yield at least two columns to be usable.
func DetectDelimiter(text string, sampleLines int) (rune, error) {
	if sampleLines <= 0 {
		sampleLines = DefaultSampleLines
	}

	lines := sampleTextLines(text, sampleLines)
	if len(lines) == 0 {
		return 0, apperrors.NewFormatDetectionError("upload contains no data lines", nil)
	}

	var best delimiterScore
	for _, d := range delimiterCandidates {
		score := scoreDelimiter(lines, d)
		if best.delimiter == 0 || score.betterThan(best) {
			best = score
		}
	}

	if best.columns < 2 {
		return 0, apperrors.NewFormatDetectionError(
			"no consistent delimiter found; tried comma, semicolon, tab and pipe", nil)
	}
	return best.delimiter, nil
}

func scoreDelimiter(lines []string, delimiter rune) delimiterScore {
	counts := make(map[int]int)
	for _, line := range lines {
		cols := strings.Count(line, string(delimiter)) + 1
		counts[cols]++
	}

	score := delimiterScore{delimiter: delimiter}
	for cols, freq := range counts {
		if freq > score.consistent || (freq == score.consistent && cols > score.columns) {
			score.columns = cols
			score.consistent = freq
		}
	}
	return score
}

func sampleTextLines(text string, limit int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) >= limit {
			break
		}
	}
	return lines
}

// Detect resolves the encoding and delimiter for an upload in one shot. It
// commits to the first encoding candidate, which is correct for any upload
// whose schema validates under it; the Parser retries later candidates when
// schema validation disagrees.
func Detect(raw []byte, sampleLines int) (domain.DetectedFormat, error) {
	candidates, err := DecodeCandidates(raw)
	if err != nil {
		return domain.DetectedFormat{}, err
	}

	var lastErr error
	for _, c := range candidates {
		delimiter, err := DetectDelimiter(c.Text, sampleLines)
		if err != nil {
			lastErr = err
			continue
		}
		return domain.DetectedFormat{Encoding: c.Encoding, Delimiter: delimiter}, nil
	}
	return domain.DetectedFormat{}, lastErr
}
