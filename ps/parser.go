package ps

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/StartAutomating/PSMinifier/ast"
	"github.com/kballard/go-shellquote"
)

// DefaultParserCommand runs the PowerShell host that parses scripts.
const DefaultParserCommand = "pwsh -NoProfile -NonInteractive"

//go:embed dump.ps1
var dumpScript string

// Parser parses PowerShell source by running the PowerShell host with a script that writes the
// syntax tree as JSON.
type Parser struct {
	Command string   // host command line, DefaultParserCommand when empty
	Env     []string // extra environment variables
}

// Parse reads PowerShell source from r and returns its syntax tree.
func (p *Parser) Parse(r io.Reader) (*ast.ScriptBody, error) {
	command := p.Command
	if command == "" {
		command = DefaultParserCommand
	}
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parser command: %w", err)
	} else if len(args) == 0 {
		return nil, errors.New("parser command: empty")
	}
	encoded, err := EncodeCommand(dumpScript)
	if err != nil {
		return nil, err
	}
	args = append(args, "-EncodedCommand", encoded)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = r
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if 0 < len(p.Env) {
		cmd.Env = append(os.Environ(), p.Env...)
	}
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("parse: %s", msg)
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	return ast.DecodeJSON(stdout)
}

// EncodeCommand encodes a script for the -EncodedCommand argument of the PowerShell host: base64
// of its UTF-16LE text.
func EncodeCommand(script string) (string, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(script))
	if err != nil {
		return "", fmt.Errorf("encode utf-16: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
