package minify

import (
	minify "github.com/StartAutomating/PSMinifier"
	"github.com/StartAutomating/PSMinifier/ps"
)

// Default minifiers for PowerShell syntax trees (JSON and CBOR) and PowerShell source
var Default *minify.M

func init() {
	Default = minify.New()
	Default.Add(minify.MediatypeTreeJSON, &ps.Minifier{Format: "json"})
	Default.Add(minify.MediatypeTreeCBOR, &ps.Minifier{Format: "cbor"})
	Default.Add(minify.MediatypeScript, &ps.Minifier{Format: "source"})
	Default.Add("application/x-powershell", &ps.Minifier{Format: "source"})
}

// Tree minifies a JSON syntax tree using the default minifiers
func Tree(s string) (string, error) {
	return Default.String(minify.MediatypeTreeJSON, s)
}

// Script minifies PowerShell source using the default minifiers, this requires the PowerShell host
func Script(s string) (string, error) {
	return Default.String(minify.MediatypeScript, s)
}
