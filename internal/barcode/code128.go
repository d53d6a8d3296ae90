// Package barcode encodes values into Code 128 symbol sequences.
//
// The encoder only produces symbol values and bar/space width patterns. Drawing
// and printer-specific byte streams are left to callers.
package barcode

import (
	"errors"
	"fmt"
	"strconv"
)

// Set identifies a Code 128 code set.
type Set string

const (
	SetA Set = "A"
	SetB Set = "B"
	SetC Set = "C"
)

const (
	startA = 103
	startB = 104
	startC = 105
	stop   = 106

	checksumModulus = 103

	// minNumericLength is the shortest all-digit value that switches to Set C.
	minNumericLength = 4
)

// patterns holds the module widths for symbol values 0..106, bar first.
// The stop symbol carries a trailing bar and is one digit longer.
var patterns = [107]string{
	"212222", "222122", "222221", "121223", "121322", "131222", "122213", "122312", "132212", "221213",
	"221312", "231212", "112232", "122132", "122231", "113222", "123122", "123221", "223211", "221132",
	"221231", "213212", "223112", "312131", "311222", "321122", "321221", "312212", "322112", "322211",
	"212123", "212321", "232121", "111323", "131123", "131321", "112313", "132113", "132311", "211313",
	"231113", "231311", "112133", "112331", "132131", "113123", "113321", "133121", "313121", "211331",
	"231131", "213113", "213311", "213131", "311123", "311321", "331121", "312113", "312311", "332111",
	"314111", "221411", "431111", "111224", "111422", "121124", "121421", "141122", "141221", "112214",
	"112412", "122114", "122411", "142112", "142211", "241211", "221114", "413111", "241112", "134111",
	"111242", "121142", "121241", "114212", "124112", "124211", "411212", "421112", "421211", "212141",
	"214121", "412121", "111143", "111341", "131141", "114113", "114311", "411113", "411311", "113141",
	"114131", "311141", "411131", "211412", "211214", "211232", "2331112",
}

// ErrEmptyInput is returned when there is nothing to encode.
var ErrEmptyInput = errors.New("barcode: value must not be empty")

// UnsupportedCharacterError reports a character outside the selected code set.
type UnsupportedCharacterError struct {
	Char rune
	Set  Set
}

func (e *UnsupportedCharacterError) Error() string {
	return fmt.Sprintf("barcode: character %q is not supported by code set %s", e.Char, e.Set)
}

// InvalidDigitPairError reports a Set C pair that is not two decimal digits.
type InvalidDigitPairError struct {
	Pair string
}

func (e *InvalidDigitPairError) Error() string {
	return fmt.Sprintf("barcode: invalid digit pair %q", e.Pair)
}

// Encoding is the complete symbol sequence for one barcode: start symbol,
// data symbols, checksum and stop symbol, with a pattern per symbol.
type Encoding struct {
	StartSet Set      `json:"start_set"`
	Codes    []int    `json:"codes"`
	Patterns []string `json:"patterns"`
}

// Checksum returns the checksum symbol of the encoding.
func (e Encoding) Checksum() int {
	if len(e.Codes) < 2 {
		return -1
	}
	return e.Codes[len(e.Codes)-2]
}

// SelectSet picks the code set used for value. All-digit values of at least
// four characters always use Set C; anything else uses preferred, or Set B
// when preferred is empty. Set C is never chosen for a value with non-digits.
func SelectSet(value string, preferred Set) Set {
	numeric := isNumeric(value)
	if len(value) >= minNumericLength && numeric {
		return SetC
	}
	if preferred == "" || (preferred == SetC && !numeric) {
		return SetB
	}
	return preferred
}

// Encode converts value into a Code 128 symbol sequence.
func Encode(value string, preferred Set) (Encoding, error) {
	if value == "" {
		return Encoding{}, ErrEmptyInput
	}

	set := SelectSet(value, preferred)

	var (
		start int
		data  []int
		err   error
	)
	switch set {
	case SetC:
		start = startC
		data, err = encodeDigitPairs(value)
	case SetA:
		start = startA
		data, err = encodeSetA(value)
	default:
		set = SetB
		start = startB
		data, err = encodeSetB(value)
	}
	if err != nil {
		return Encoding{}, err
	}

	codes := make([]int, 0, len(data)+3)
	codes = append(codes, start)
	codes = append(codes, data...)
	codes = append(codes, checksum(start, data), stop)

	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = patterns[code]
	}

	return Encoding{StartSet: set, Codes: codes, Patterns: out}, nil
}

// Modules flattens the patterns of enc into individual module widths,
// alternating bar and space and starting with a bar.
func Modules(enc Encoding) []int {
	var modules []int
	for _, p := range enc.Patterns {
		for _, r := range p {
			modules = append(modules, int(r-'0'))
		}
	}
	return modules
}

// Pattern returns the bar/space pattern for a single symbol value.
func Pattern(code int) (string, bool) {
	if code < 0 || code >= len(patterns) {
		return "", false
	}
	return patterns[code], true
}

func checksum(start int, data []int) int {
	sum := start
	for i, code := range data {
		sum += code * (i + 1)
	}
	return sum % checksumModulus
}

func encodeDigitPairs(value string) ([]int, error) {
	digits := value
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}

	data := make([]int, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		pair := digits[i : i+2]
		code, err := strconv.Atoi(pair)
		if err != nil || code < 0 || code > 99 || !isNumeric(pair) {
			return nil, &InvalidDigitPairError{Pair: pair}
		}
		data = append(data, code)
	}
	return data, nil
}

func encodeSetB(value string) ([]int, error) {
	data := make([]int, 0, len(value))
	for _, r := range value {
		if r < 32 || r > 126 {
			return nil, &UnsupportedCharacterError{Char: r, Set: SetB}
		}
		data = append(data, int(r)-32)
	}
	return data, nil
}

func encodeSetA(value string) ([]int, error) {
	data := make([]int, 0, len(value))
	for _, r := range value {
		switch {
		case r >= 32 && r <= 95:
			data = append(data, int(r)-32)
		case r >= 0 && r < 32:
			data = append(data, int(r)+64)
		default:
			return nil, &UnsupportedCharacterError{Char: r, Set: SetA}
		}
	}
	return data, nil
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
