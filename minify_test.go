package minify

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errDummy = errors.New("dummy error")

// from os/exec/exec_test.go
func helperCommand(t *testing.T, s ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--"}
	cs = append(cs, s...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func helperMinifyString(t *testing.T, m *M, mediatype string) string {
	s, err := m.String(mediatype, "")
	assert.Nil(t, err, "minifier must not return error for '"+mediatype+"'")
	return s
}

////////////////////////////////////////////////////////////////

var m *M

func init() {
	m = New()
	m.AddFunc("dummy/copy", func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		io.Copy(w, r)
		return nil
	})
	m.AddFunc("dummy/nil", func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		return nil
	})
	m.AddFunc("dummy/err", func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		return errDummy
	})
	m.AddFunc("dummy/format", func(m *M, w io.Writer, r io.Reader, params map[string]string) error {
		w.Write([]byte(params["format"]))
		return nil
	})
	m.AddFunc("dummy/params", func(m *M, w io.Writer, r io.Reader, params map[string]string) error {
		return m.Minify(params["type"]+"/"+params["sub"], w, r)
	})
	m.AddFunc(MediatypeScript, func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		w.Write([]byte("script"))
		return nil
	})
	m.AddFuncRegexp(regexp.MustCompile(`^application/x-powershell-ast\+.+$`), func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		w.Write([]byte("tree"))
		return nil
	})
	m.AddFuncRegexp(regexp.MustCompile("^.+/.+$"), func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		w.Write([]byte("*/*"))
		return nil
	})
}

func TestMinify(t *testing.T) {
	assert.Equal(t, ErrNotExist, m.Minify("?", nil, nil), "must return ErrNotExist when minifier doesn't exist")
	assert.Nil(t, m.Minify("dummy/nil", nil, nil), "must return nil for dummy/nil")
	assert.Equal(t, errDummy, m.Minify("dummy/err", nil, nil), "must return errDummy for dummy/err")

	b := []byte("test")
	out, err := m.Bytes("dummy/nil", b)
	assert.Nil(t, err, "must not return error for dummy/nil")
	assert.Equal(t, []byte{}, out, "must return empty byte array for dummy/nil")
	out, err = m.Bytes("?", b)
	assert.Equal(t, ErrNotExist, err, "must return ErrNotExist when minifier doesn't exist")
	assert.Equal(t, b, out, "must return input byte array when minifier doesn't exist")

	s := "test"
	out2, err := m.String("dummy/nil", s)
	assert.Nil(t, err, "must not return error for dummy/nil")
	assert.Equal(t, "", out2, "must return empty string for dummy/nil")
	out2, err = m.String("?", s)
	assert.Equal(t, ErrNotExist, err, "must return ErrNotExist when minifier doesn't exist")
	assert.Equal(t, s, out2, "must return input string when minifier doesn't exist")
}

func TestAdd(t *testing.T) {
	m := New()
	w := &bytes.Buffer{}
	r := bytes.NewBufferString("test")
	m.AddFunc("dummy/err", func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		return errDummy
	})
	assert.Equal(t, errDummy, m.Minify("dummy/err", nil, nil), "must return errDummy for dummy/err")

	m.AddCmd("dummy/copy", helperCommand(t, "dummy/copy"))
	m.AddCmd("dummy/err", helperCommand(t, "dummy/err"))
	assert.Nil(t, m.Minify("dummy/copy", w, r), "must return nil for dummy/copy command")
	assert.Equal(t, "test", w.String(), "must return input string for dummy/copy command")
	assert.Equal(t, "exit status 1", m.Minify("dummy/err", w, r).Error(), "must return proper exit status when command encounters error")
}

func TestAddCmdLine(t *testing.T) {
	m := New()
	err := m.AddCmdLine("dummy/quoted", `"unterminated`)
	assert.NotNil(t, err, "must return error for unterminated quote")
	err = m.AddCmdLine("dummy/empty", ``)
	assert.NotNil(t, err, "must return error for empty command line")
	_, _, minifier := m.Match("dummy/empty")
	assert.Nil(t, minifier, "must not add a minifier for an empty command line")

	err = m.AddCmdLine("dummy/echo", `pwsh -NoProfile -Command "& { $input }"`)
	assert.Nil(t, err, "must split a quoted command line")
	_, _, minifier = m.Match("dummy/echo")
	cmd := minifier.(*cmdMinifier).cmd
	assert.Equal(t, []string{"pwsh", "-NoProfile", "-Command", "& { $input }"}, cmd.Args)
}

func TestWildcard(t *testing.T) {
	assert.Equal(t, "script", helperMinifyString(t, m, MediatypeScript), "must return script for "+MediatypeScript)
	assert.Equal(t, "tree", helperMinifyString(t, m, MediatypeTreeJSON), "must return tree for "+MediatypeTreeJSON)
	assert.Equal(t, "tree", helperMinifyString(t, m, MediatypeTreeCBOR), "must return tree for "+MediatypeTreeCBOR)
	assert.Equal(t, "*/*", helperMinifyString(t, m, "text/plain"), "must return */* for text/plain")
	assert.Equal(t, "cbor", helperMinifyString(t, m, "dummy/format;format=cbor"), "must return cbor for dummy/format;format=cbor")
	assert.Equal(t, "cbor", helperMinifyString(t, m, "dummy/format; format = cbor "), "must return cbor for ' dummy/format; format = cbor '")
	assert.Equal(t, "script", helperMinifyString(t, m, "dummy/params;type=text;sub=x-powershell"), "must return script for dummy/params;type=text;sub=x-powershell")
}

func TestReader(t *testing.T) {
	b, err := io.ReadAll(m.Reader("dummy/copy", strings.NewReader("test")))
	assert.Nil(t, err)
	assert.Equal(t, "test", string(b))

	_, err = io.ReadAll(m.Reader("dummy/err", strings.NewReader("test")))
	assert.Equal(t, errDummy, err)
}

func TestHelperProcess(*testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "No command\n")
		os.Exit(2)
	}
	cmd := args[0]
	switch cmd {
	case "dummy/copy":
		io.Copy(os.Stdout, os.Stdin)
	case "dummy/err":
		os.Exit(1)
	default:
		os.Exit(2)
	}
	os.Exit(0)
}

////////////////////////////////////////////////////////////////

func ExampleM_Minify_custom() {
	m := New()
	m.AddFunc("text/plain", func(m *M, w io.Writer, r io.Reader, _ map[string]string) error {
		// remove all newlines and spaces
		rb := bufio.NewReader(r)
		for {
			line, err := rb.ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			if _, errws := io.WriteString(w, strings.Replace(line, " ", "", -1)); errws != nil {
				return errws
			}
			if err == io.EOF {
				break
			}
		}
		return nil
	})

	in := "Write-Output  'spaces are gone'"
	out, err := m.String("text/plain", in)
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: Write-Output'spacesaregone'
}
