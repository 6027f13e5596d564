/*
Copyright © 2021 Billy G. Allie <bill.allie@defiant.mug.org>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bgallie/filters/ascii85"
	"github.com/bgallie/filters/flate"
	"github.com/bgallie/filters/lines"
	"github.com/bgallie/filters/pem"

	"github.com/bgallie/enigma/cryptors"
	"github.com/bgallie/enigma/engine"
)

const (
	pemType      = "ENIGMA MESSAGE"
	headerPrefix = "+ENIGMA"
)

// armour selects how writeMessage encodes a message body.  The default is
// the indicator on its own line followed by the body split into lines.
type armour struct {
	usePem     bool
	useASCII85 bool
	compress   bool
}

func (a armour) check() error {
	if a.usePem && a.useASCII85 {
		return cryptors.Invalid("--usePem and --useASCII85 cannot be combined")
	}
	if a.compress && !a.usePem && !a.useASCII85 {
		return cryptors.Invalid("--compress needs --usePem or --useASCII85")
	}
	return nil
}

// pipeFrom copies rdr into a pipe so it can be handed to the filters.
func pipeFrom(rdr io.Reader) *io.PipeReader {
	rRdr, rWrtr := io.Pipe()
	go func() {
		_, err := io.Copy(rWrtr, rdr)
		rWrtr.CloseWithError(err)
	}()
	return rRdr
}

// bodyReader returns the body as a stream, flate compressed if asked.
func bodyReader(text string, compress bool) *io.PipeReader {
	if compress {
		return pipeFrom(flate.ToFlate(strings.NewReader(text)))
	}
	return pipeFrom(strings.NewReader(text))
}

// readBody reads a decoded body, undoing the compression if needed.
func readBody(rdr *io.PipeReader, compressed bool) (string, error) {
	if compressed {
		rdr = flate.FromFlate(rdr)
	}
	b, err := io.ReadAll(rdr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readText reads all of rdr and returns its letters in upper case.
func readText(rdr io.Reader) (string, error) {
	b, err := io.ReadAll(lines.CombineLines(bufio.NewReader(rdr)))
	if err != nil {
		return "", err
	}
	return cryptors.Normalize(string(b)), nil
}

/*
readMessage reads a message written by writeMessage.  Three layouts are
recognised:
  - a PEM block whose Indicator header carries the indicator,
  - a "+ENIGMA|a|<compressed>|<indicator>" line followed by ASCII85 lines,
  - the indicator on the first line followed by the body.
*/
func readMessage(rdr io.Reader) (engine.Message, error) {
	var msg engine.Message
	bRdr := bufio.NewReader(rdr)
	b, err := bRdr.Peek(5)
	if err != nil && err != io.EOF {
		return msg, err
	}
	switch {
	case string(b) == "-----":
		pRdr, blck := pem.FromPem(bRdr)
		body, err := readBody(pRdr, blck.Headers["Compression"] == "true")
		if err != nil {
			return msg, err
		}
		indicator, ok := blck.Headers["Indicator"]
		if !ok {
			return msg, cryptors.Invalid("PEM block has no Indicator header")
		}
		return engine.NewMessage(cryptors.Normalize(indicator), body), nil
	case bytes.HasPrefix(b, []byte("+")):
		line, err := bRdr.ReadString('\n')
		if err != nil && err != io.EOF {
			return msg, err
		}
		fields := strings.Split(strings.TrimSpace(line), "|")
		if len(fields) != 4 || fields[0] != headerPrefix || fields[1] != "a" {
			return msg, cryptors.Invalid("malformed message header %q", strings.TrimSpace(line))
		}
		body, err := readBody(ascii85.FromASCII85(lines.CombineLines(bRdr)), fields[2] == "true")
		if err != nil {
			return msg, err
		}
		return engine.NewMessage(cryptors.Normalize(fields[3]), body), nil
	}
	line, err := bRdr.ReadString('\n')
	if err != nil && err != io.EOF {
		return msg, err
	}
	text, err := readText(bRdr)
	if err != nil {
		return msg, err
	}
	return engine.Message{Indicator: cryptors.Normalize(line), Text: text}, nil
}

// writeMessage writes msg in the layout selected by a.
func writeMessage(w io.Writer, msg engine.Message, a armour) error {
	if err := a.check(); err != nil {
		return err
	}
	switch {
	case a.usePem:
		var blck pem.Block
		blck.Type = pemType
		blck.Headers = map[string]string{
			"Indicator":   msg.Indicator,
			"Compression": strconv.FormatBool(a.compress),
		}
		_, err := io.Copy(w, pem.ToPem(bodyReader(msg.Text, a.compress), blck))
		return err
	case a.useASCII85:
		if _, err := fmt.Fprintf(w, "%s|a|%t|%s\n", headerPrefix, a.compress, msg.Indicator); err != nil {
			return err
		}
		_, err := io.Copy(w, lines.SplitToLines(ascii85.ToASCII85(bodyReader(msg.Text, a.compress))))
		return err
	}
	if _, err := fmt.Fprintln(w, msg.Indicator); err != nil {
		return err
	}
	return writeText(w, msg.Text)
}

// writeText writes text split into lines.
func writeText(w io.Writer, text string) error {
	_, err := io.Copy(w, lines.SplitToLines(pipeFrom(strings.NewReader(text))))
	return err
}
