package caldata

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// Parse reads Size newline-terminated decimal values from r.  Parsing is
// permissive: a line that is empty, missing or not numeric reads as 0, and
// trailing garbage after the leading digits is ignored.  The indices of the
// lines that were not clean in-range decimals are returned in malformed.
func Parse(r io.Reader) (rec Record, malformed []int) {
	br := bufio.NewReader(r)
	for i := range rec {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			malformed = append(malformed, i)
			continue
		}
		v, ok := toInt(strings.TrimSuffix(line, "\n"))
		rec[i] = v
		if !ok {
			malformed = append(malformed, i)
		}
	}
	return
}

// toInt converts s the way the Arduino String.toInt() does: leading
// whitespace is skipped, an optional sign and the leading decimal digits are
// converted, and the rest is ignored.  The result is truncated to 16 bits.
// ok is true only if s (less a trailing CR) is a plain decimal in [0, 65535].
func toInt(s string) (v uint16, ok bool) {
	t := strings.TrimLeft(s, " \t\r\n\v\f")

	neg := false
	if t != "" && (t[0] == '+' || t[0] == '-') {
		neg = t[0] == '-'
		t = t[1:]
	}

	var n int64
	digits := 0
	for digits < len(t) && t[digits] >= '0' && t[digits] <= '9' {
		if n <= math.MaxUint32 {
			n = n*10 + int64(t[digits]-'0')
		}
		digits++
	}
	if neg {
		n = -n
	}

	clean := strings.TrimSuffix(s, "\r")
	ok = digits > 0 && digits == len(clean) && n <= math.MaxUint16
	return uint16(n), ok
}

// Write formats rec as newline-separated decimals, one value per line
func Write(w io.Writer, rec Record) error {
	_, err := fmt.Fprintf(w, "%d\n%d\n%d\n%d\n%d\n",
		rec[0], rec[1], rec[2], rec[3], rec[4])
	return err
}
