package caldata

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestToInt(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		in   string
		want uint16
		ok   bool
	}{
		{"0", 0, true},
		{"65535", 65535, true},
		{"12\r", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12abc", 12, false},
		{"  42", 42, false},
		{"+7", 7, false},
		{"-1", 65535, false},
		{"65536", 0, false},
		{"70000", 4464, false},
		{"99999999999999999999", 58367, false},
	}
	for _, test := range tests {
		got, ok := toInt(test.in)
		c.Check(got, qt.Equals, test.want, qt.Commentf("toInt(%q)", test.in))
		c.Check(ok, qt.Equals, test.ok, qt.Commentf("toInt(%q)", test.in))
	}
}

func TestParseNoTrailingNewline(t *testing.T) {
	c := qt.New(t)
	rec, malformed := Parse(strings.NewReader("1\n2\n3\n4\n5"))
	c.Assert(rec, qt.Equals, Record{1, 2, 3, 4, 5})
	c.Assert(malformed, qt.HasLen, 0)
}

func TestParseEmpty(t *testing.T) {
	c := qt.New(t)
	rec, malformed := Parse(strings.NewReader(""))
	c.Assert(rec, qt.Equals, Record{})
	c.Assert(malformed, qt.DeepEquals, []int{0, 1, 2, 3, 4})
}

func TestParseIgnoresExtraLines(t *testing.T) {
	c := qt.New(t)
	rec, malformed := Parse(strings.NewReader("1\n2\n3\n4\n5\n6\n7\n"))
	c.Assert(rec, qt.Equals, Record{1, 2, 3, 4, 5})
	c.Assert(malformed, qt.HasLen, 0)
}

func TestParseCRLF(t *testing.T) {
	c := qt.New(t)
	rec, malformed := Parse(strings.NewReader("1\r\n2\r\n3\r\n4\r\n5\r\n"))
	c.Assert(rec, qt.Equals, Record{1, 2, 3, 4, 5})
	c.Assert(malformed, qt.HasLen, 0)
}

func TestWrite(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	c.Assert(Write(&buf, Record{111, 222, 333, 444, 555}), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "111\n222\n333\n444\n555\n")
}

func TestRecordString(t *testing.T) {
	qt.Assert(t, Record{1, 2, 3, 4, 5}.String(), qt.Equals, "1, 2, 3, 4, 5")
}
