package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPath(t *testing.T) {
	assert.True(t, ValidPath("foo/bar.txt"))
	assert.True(t, ValidPath("."))
	assert.False(t, ValidPath("/foo"))
	assert.False(t, ValidPath("foo/../bar"))
	assert.False(t, ValidPath(`foo\bar`))
}

func TestExt(t *testing.T) {
	testdata := []struct {
		in, out string
	}{
		{"", ""},
		{"foo", ""},
		{"foo.json", "json"},
		{"dir.d/foo", ""},
		{"dir/foo.tar.gz", "gz"},
		{"foo.json?x=y.txt", "json"},
		{"foo.csv#frag.txt", "csv"},
		{"foo.yaml?a=b#c.d", "yaml"},
		{"foo?x.json", ""},
	}

	for _, d := range testdata {
		assert.Equal(t, d.out, Ext(d.in), "input: %q", d.in)
	}
}

func TestStripQuery(t *testing.T) {
	assert.Equal(t, "foo.txt", StripQuery("foo.txt"))
	assert.Equal(t, "foo.txt", StripQuery("foo.txt?a=b"))
	assert.Equal(t, "foo.txt", StripQuery("foo.txt#frag?a=b"))
	assert.Equal(t, "dir/foo", StripQuery("dir/foo?a=b#frag"))
}
