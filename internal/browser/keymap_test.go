package browser

import (
	"testing"

	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
)

func TestResolveKeyNamedKeys(t *testing.T) {
	assert.Equal(t, kb.Enter, ResolveKey("Enter"))
	assert.Equal(t, kb.Enter, ResolveKey("return"))
	assert.Equal(t, kb.Delete, ResolveKey("Delete"))
	assert.Equal(t, kb.PageDown, ResolveKey("PageDown"))
	assert.Equal(t, kb.F5, ResolveKey("f5"))
}

func TestResolveKeyPassesThroughPrintable(t *testing.T) {
	assert.Equal(t, "a", ResolveKey("a"))
	assert.Equal(t, "/", ResolveKey("/"))
}
