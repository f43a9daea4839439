package http

import (
	"bufio"
	"io"
	"strconv"

	"litehttpd/application/util/rule"

	"github.com/pkg/errors"
)

type EncodeOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF: false,
}

type MessageEncoder struct {
	bw   *bufio.Writer
	opts EncodeOptions
}

func (me *MessageEncoder) writeLine(line []byte) error {
	if _, err := me.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	term := rule.CRLF
	if me.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := me.bw.Write(term); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (me *MessageEncoder) encodeHeaders(headers Headers) error {
	for _, field := range headers {
		if err := me.writeLine(field.Text()); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := me.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (me *MessageEncoder) encodeBody(body []byte) error {
	if _, err := me.bw.Write(body); err != nil {
		return errors.Wrap(err, "writing body")
	}

	if err := me.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing")
	}

	return nil
}

type RequestEncoder struct{ MessageEncoder }

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	return &RequestEncoder{
		MessageEncoder{
			bw:   bufio.NewWriter(w),
			opts: opts,
		},
	}
}

func (re *RequestEncoder) Encode(request Request) error {
	if err := re.writeLine(request.RequestLine.Text()); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if !request.Version.IsSimple() {
		if err := re.encodeHeaders(request.Headers); err != nil {
			return errors.Wrap(err, "encoding headers")
		}
	}

	return re.encodeBody(request.Body)
}

type ResponseEncoder struct{ MessageEncoder }

func NewResponseEncoder(w io.Writer, opts EncodeOptions) *ResponseEncoder {
	return &ResponseEncoder{
		MessageEncoder{
			bw:   bufio.NewWriter(w),
			opts: opts,
		},
	}
}

// Encode writes the status line, headers, a blank line and the body.
// An HTTP/0.9 response is the bare body.
func (re *ResponseEncoder) Encode(response Response) error {
	if !response.Version.IsSimple() {
		if err := re.encodeStatusLine(response.StatusLine); err != nil {
			return errors.Wrap(err, "encoding status line")
		}

		if err := re.encodeHeaders(response.Headers); err != nil {
			return errors.Wrap(err, "encoding headers")
		}
	}

	return re.encodeBody(response.Body)
}

func (re *ResponseEncoder) encodeStatusLine(statLine StatusLine) error {
	line := make([]byte, 0, 64)
	line = append(line, statLine.Version.Text()...)
	line = append(line, rule.SP)
	line = strconv.AppendUint(line, uint64(statLine.StatusCode), 10)
	line = append(line, rule.SP)
	line = append(line, statLine.ReasonPhrase...)

	if err := re.writeLine(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
