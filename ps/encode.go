package ps

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// LineWidth is the width of the base64 lines in a compressed envelope.
const LineWidth = 76

const (
	envelopePrefix = "([ScriptBlock]::Create([IO.StreamReader]::new([IO.Compression.GZipStream]::new([IO.MemoryStream]::new([Convert]::FromBase64String('"
	envelopeSuffix = "')),[IO.Compression.CompressionMode]::Decompress),[Text.Encoding]::Unicode).ReadToEnd()))"
)

// ErrEnvelope is returned by Decode for text that is not a compressed envelope.
var ErrEnvelope = errors.New("not a compressed envelope")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode compresses text into a self-decoding envelope: the text is encoded as UTF-16LE, gzipped
// and base64 encoded, and the envelope evaluates to a script block of the text. Base64 lines are
// wrapped at LineWidth characters unless singleLine is set.
func Encode(text string, singleLine bool) (string, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return "", fmt.Errorf("encode utf-16: %w", err)
	}

	buf := &bytes.Buffer{}
	zw, err := gzip.NewWriterLevel(buf, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(b); err != nil {
		return "", err
	} else if err := zw.Close(); err != nil {
		return "", err
	}

	data := base64.StdEncoding.EncodeToString(buf.Bytes())
	sb := strings.Builder{}
	sb.Grow(len(envelopePrefix) + len(data) + len(data)/LineWidth + len(envelopeSuffix))
	sb.WriteString(envelopePrefix)
	for LineWidth < len(data) && !singleLine {
		sb.WriteString(data[:LineWidth])
		sb.WriteByte('\n')
		data = data[LineWidth:]
	}
	sb.WriteString(data)
	sb.WriteString(envelopeSuffix)
	return sb.String(), nil
}

// Decode reverses Encode and returns the text inside an envelope. Text around the envelope, such as
// a binding or a dot-source operator, is ignored.
func Decode(envelope string) (string, error) {
	start := strings.Index(envelope, envelopePrefix)
	if start == -1 {
		return "", ErrEnvelope
	}
	data := envelope[start+len(envelopePrefix):]
	end := strings.Index(data, envelopeSuffix)
	if end == -1 {
		return "", ErrEnvelope
	}
	data = stripWhitespace(data[:end])

	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("decode gzip: %w", err)
	}
	defer zr.Close()
	if b, err = io.ReadAll(zr); err != nil {
		return "", fmt.Errorf("decode gzip: %w", err)
	}
	if b, err = utf16le.NewDecoder().Bytes(b); err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return string(b), nil
}

// Wrap applies the output options to minified text: the compressed envelope, dot-sourcing and the
// binding to a variable.
func Wrap(text string, o Options) (string, error) {
	out := text
	if o.GZip {
		var err error
		if out, err = Encode(text, o.SingleLine); err != nil {
			return "", err
		}
	}
	if o.DotSource {
		if o.GZip {
			out = ". " + out
		} else {
			out = ". {" + out + "}"
		}
	}
	if name := strings.TrimPrefix(o.Name, "$"); name != "" && !o.Anonymous {
		if !o.GZip && !o.DotSource {
			out = "{" + out + "}"
		}
		if isSimpleName(name) {
			out = "$" + name + "=" + out
		} else {
			out = "${" + strings.ReplaceAll(name, "}", "`}") + "}=" + out
		}
	}
	return out, nil
}
