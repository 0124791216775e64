package orgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want Path
		out  string
	}{
		{"/1000/1100", Path{"1000", "1100"}, "/1000/1100"},
		{"1000/1100/", Path{"1000", "1100"}, "/1000/1100"},
		{"/", nil, "/"},
		{"", nil, "/"},
		{"/1000/PRIVATE/U001", Path{"1000", "PRIVATE", "U001"}, "/1000/PRIVATE/U001"},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		assert.Equal(t, tc.want, got, "Parse(%q)", tc.in)
		assert.Equal(t, tc.out, got.String(), "String of %q", tc.in)
	}
}

func TestIsAncestorOrSame(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"same path", "/1000/1100", "/1000/1100", true},
		{"direct child", "/1000/11", "/1000/11/2", true},
		{"deep descendant", "/1000", "/1000/1100/1110/1111", true},
		{"adjacent segment is not a prefix", "/1000/11", "/1000/110", false},
		{"adjacent segment reversed", "/1000/110", "/1000/11", false},
		{"different tenants", "/1000/1100", "/2000/1100", false},
		{"sibling branches", "/1000/1100/1110", "/1000/1100/1120", false},
		{"root covers all", "/1000", "/1000/PRIVATE/U001", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := Parse(tc.a), Parse(tc.b)
			assert.Equal(t, tc.want, IsAncestorOrSame(a, b))
			// symmetric by contract
			assert.Equal(t, tc.want, IsAncestorOrSame(b, a))
		})
	}
}

func TestIsAncestorOrSameReflexive(t *testing.T) {
	for _, s := range []string{"/", "/1000", "/1000/1100/1110/1111"} {
		p := Parse(s)
		assert.True(t, IsAncestorOrSame(p, p), "reflexive for %q", s)
	}
}

func TestTruncate(t *testing.T) {
	p := Parse("/1000/1100/1110/1111")
	assert.Equal(t, "/1000/1100", p.Truncate(2).String())
	assert.Equal(t, "/1000", p.Truncate(1).String())
	assert.Equal(t, p, p.Truncate(10))
}

func TestChildDoesNotAliasParent(t *testing.T) {
	p := Parse("/1000")
	c1 := p.Child("1100")
	c2 := p.Child("1200")
	assert.Equal(t, "/1000/1100", c1.String())
	assert.Equal(t, "/1000/1200", c2.String())
}
