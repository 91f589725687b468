package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tool-pulse/parser"
)

func TestVisibleTextSkipsScriptsAndStyles(t *testing.T) {
	htmlStr := `<html><head><style>.a{color:red}</style></head>
<body><script>var x = 1;</script><div>Great tool</div><p>but pricey</p></body></html>`

	text := parser.VisibleText(htmlStr)
	assert.Contains(t, text, "Great tool")
	assert.Contains(t, text, "but pricey")
	assert.NotContains(t, text, "color:red")
	assert.NotContains(t, text, "var x")
}

func TestVisibleTextEmptyInput(t *testing.T) {
	assert.Equal(t, "", parser.VisibleText(""))
}

func TestExtractTextFallsBackToEmpty(t *testing.T) {
	// not meaningful HTML for either extractor
	assert.Equal(t, "", parser.ExtractText("<html></html>"))
}
