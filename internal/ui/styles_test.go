package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatterPrefixes(t *testing.T) {
	assert.Contains(t, Success("done"), "✓ done")
	assert.Contains(t, Warn("careful"), "⚠ careful")
	assert.Contains(t, Err("failed"), "✗ failed")
	assert.Contains(t, Info("note"), "ℹ note")
	assert.Contains(t, Hint("run w3link connect"), "→ run w3link connect")
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestAllFormattersReturnNonEmpty(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Hint":      Hint,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test")
		})
	}
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "", TruncateAddr(""))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))

	addr := "0x1234567890abcdef1234567890abcdef12345678"
	assert.Equal(t, "0x1234…5678", TruncateAddr(addr))
}

func TestBannerMentionsLending(t *testing.T) {
	assert.Contains(t, Banner(), "RSK lending")
}
