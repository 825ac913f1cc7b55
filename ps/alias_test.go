package ps

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestAliasCore(t *testing.T) {
	var tests = []struct {
		name     string
		expected string
	}{
		{"Write-Output", "echo"},
		{"write-output", "echo"},
		{"Get-ChildItem", "dir"},
		{"Where-Object", "?"},
		{"ForEach-Object", "%"},
		{"Remove-Item", "rd"},
		{"gci", "gci"},
		{"Invoke-Build", "Invoke-Build"},
		{"Sort-Object", "Sort-Object"},
		{"Stop-Process", "spps"},
		{"Clear-Host", "cls"},
		{"clear", "clear"},
		{"kill", "kill"},
		{"Set-Content", "Set-Content"},
	}
	aliases := newAliasCache(coreAliases)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.String(t, aliases.shortest(tt.name), tt.expected)
		})
	}
}

func TestAliasWindows(t *testing.T) {
	table, err := AliasProfile("Windows")
	test.Error(t, err)
	aliases := newAliasCache(table)
	test.String(t, aliases.shortest("Get-ChildItem"), "ls")
	test.String(t, aliases.shortest("Write-Output"), "echo")
	test.String(t, aliases.shortest("Sort-Object"), "sort")
	test.String(t, aliases.shortest("Stop-Process"), "kill")
	test.String(t, aliases.shortest("clear"), "cls")
	test.String(t, aliases.shortest("Set-Content"), "Set-Content")
	test.That(t, coreAliases.Len() < table.Len())
}

func TestAliasResolve(t *testing.T) {
	table := NewAliasTable(map[string]string{
		"x":     "y",
		"y":     "Get-Thing",
		"loop":  "cycle",
		"cycle": "loop",
	})

	command, ok := table.ResolveCommand("X")
	test.That(t, ok)
	test.String(t, command, "Get-Thing")
	command, ok = table.ResolveCommand("get-thing")
	test.That(t, ok)
	test.String(t, command, "Get-Thing")
	test.T(t, table.AliasesOf("GET-THING"), []string{"x", "y"})
	test.String(t, newAliasCache(table).shortest("Get-Thing"), "x")

	_, ok = table.ResolveCommand("loop")
	test.That(t, !ok, "cyclic alias")
	test.String(t, newAliasCache(table).shortest("loop"), "loop")

	_, ok = table.ResolveCommand("Get-Other")
	test.That(t, !ok)
	test.T(t, len(table.AliasesOf("Get-Other")), 0)
}

func TestAliasNil(t *testing.T) {
	test.String(t, newAliasCache(nil).shortest("Write-Output"), "Write-Output")
}

func TestLoadAliasTable(t *testing.T) {
	var tests = []struct {
		name  string
		input string
	}{
		{"mapping", "tc: Test-Connection\nwo: Write-Output\n"},
		{"aliases key", "aliases:\n  tc: Test-Connection\n  wo: Write-Output\n"},
		{"json", `{"tc": "Test-Connection", "wo": "Write-Output"}`},
		{"json list", `[{"Name": "tc", "Definition": "Test-Connection"}, {"name": "wo", "definition": "Write-Output"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadAliasTable(strings.NewReader(tt.input))
			test.Error(t, err)
			test.T(t, table.Len(), 2)
			test.T(t, table.Aliases(), map[string]string{"tc": "Test-Connection", "wo": "Write-Output"})
			test.String(t, newAliasCache(table).shortest("Test-Connection"), "tc")
		})
	}
}

func TestLoadAliasTableEmpty(t *testing.T) {
	table, err := LoadAliasTable(strings.NewReader(""))
	test.Error(t, err)
	test.T(t, table.Len(), 0)
}

func TestLoadAliasTableErrors(t *testing.T) {
	var tests = []struct {
		name  string
		input string
	}{
		{"scalar", "just text"},
		{"definition", "tc: [1, 2]"},
		{"entry", "- 1\n- 2\n"},
		{"missing definition", `[{"Name": "tc"}]`},
		{"syntax", "tc: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAliasTable(strings.NewReader(tt.input))
			test.That(t, err != nil, "must return error")
		})
	}
}

func TestAliasProfile(t *testing.T) {
	table, err := AliasProfile("")
	test.Error(t, err)
	test.That(t, table == coreAliases)

	_, err = AliasProfile("windws")
	test.That(t, err != nil)
	test.That(t, strings.Contains(err.Error(), `did you mean "windows"`), err.Error())

	_, err = AliasProfile("qqq")
	test.That(t, err != nil)
	test.That(t, strings.Contains(err.Error(), "expected one of core, windows"), err.Error())
}
