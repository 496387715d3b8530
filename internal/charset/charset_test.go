package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoder_EmptyTermDefaultsToUTF8(t *testing.T) {
	d := New("")
	assert.Equal(t, "", d.Term())
	assert.Equal(t, "hello", d.Decode([]byte("hello")))
}

func TestDecoder_InstallSwitchesCharset(t *testing.T) {
	d := New("")
	ok := d.Install("ISO_IR 100")
	assert.True(t, ok)
	assert.Equal(t, "ISO_IR 100", d.Term())
}

func TestDecoder_InstallUnrecognizedTermFallsBackToUTF8(t *testing.T) {
	d := New("")
	ok := d.Install("NOT_A_REAL_TERM")
	assert.False(t, ok)
	assert.Equal(t, "plain", d.Decode([]byte("plain")))
}

func TestDecoder_InstallUnsupportedExtendedTermReportsFalse(t *testing.T) {
	d := New("")
	ok := d.Install("ISO 2022 IR 149")
	assert.False(t, ok, "ISO 2022 IR 149 is recognized but pinned as unsupported")
	assert.Equal(t, "raw", d.Decode([]byte("raw")), "falls back to verbatim bytes when no decoder is installed")
}

func TestDecoder_DecodeISO88591(t *testing.T) {
	d := New("ISO_IR 100")
	// 0xE9 is e-acute in ISO-8859-1.
	out := d.Decode([]byte{0xE9})
	assert.Equal(t, "é", out)
}

func TestDecodeASCII_MapsBytesToRunesVerbatim(t *testing.T) {
	out := DecodeASCII([]byte{0x41, 0x42, 0xE9})
	assert.Equal(t, "ABé", out)
}
