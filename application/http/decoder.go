package http

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	iolib "litehttpd/lib/io"
	"litehttpd/transport"

	"github.com/pkg/errors"
)

// FormContentType is the only body type the decoder reads on its own.
const FormContentType = "application/x-www-form-urlencoded"

type DecodeOptions struct {
	// InitialLineSize is the starting size of the line buffer, which doubles as needed.
	// Zero means [iolib.DefaultLineSize].
	InitialLineSize uint

	// MaxLineSize limits the growth of the line buffer.
	// Zero means the buffer grows without limit.
	MaxLineSize uint

	// MaxContentSize limits the length of a form body. Zero means no limit.
	MaxContentSize uint

	// BodyMethods lists the methods whose form bodies are read.
	// Nil means POST only.
	BodyMethods []string
}

var DefaultDecodeOptions = DecodeOptions{
	InitialLineSize: iolib.DefaultLineSize,
	MaxLineSize:     0,
	MaxContentSize:  0,
	BodyMethods:     []string{"POST"},
}

func (o DecodeOptions) lineOptions() iolib.LineOptions {
	return iolib.LineOptions{
		InitialLineSize: o.InitialLineSize,
		MaxLineSize:     o.MaxLineSize,
		MaxContentSize:  o.MaxContentSize,
	}
}

func (o DecodeOptions) readsBody(method string) bool {
	if o.BodyMethods == nil {
		return method == "POST"
	}
	for _, m := range o.BodyMethods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// Request is a request as read from the wire.
type Request struct {
	RequestLine
	Headers Headers

	// Body is nil unless a form body was read.
	Body []byte
}

var (
	ErrRequestLineTooLong   = errors.New("request line length exceeds limit")
	ErrFieldLineTooLong     = errors.New("field line length exceeds limit")
	ErrMissingBodyHeaders   = errors.New("content-type or content-length is missing")
	ErrInvalidContentLength = errors.New("content-length is invalid")
	ErrShortBody            = errors.New("body is shorter than content-length")
	ErrContentTooLarge      = errors.New("content-length exceeds limit")
)

type RequestDecoder struct {
	lr   *iolib.LineReader
	opts DecodeOptions
}

// NewRequestDecoder reads requests from r.
// If r is already an [iolib.LineReader] it is used as is,
// so bytes it buffered are not lost.
func NewRequestDecoder(r io.Reader, opts DecodeOptions) *RequestDecoder {
	lr, ok := r.(*iolib.LineReader)
	if !ok {
		lr = iolib.NewLineReader(r, opts.lineOptions())
	}
	return &RequestDecoder{lr: lr, opts: opts}
}

// Decode reads the request line, the headers and, for a form post, the body.
// r MUST be a non-nil pointer.
func (rd *RequestDecoder) Decode(r *Request) error {
	line, err := rd.lr.ReadLine()
	if err != nil {
		if errors.Is(err, iolib.ErrBufferLimit) {
			return fmt.Errorf("%w: %w", ErrRequestLineTooLong, err)
		}
		// Keep both, so the caller can tell a timeout from garbage.
		return fmt.Errorf("%w: reading line: %w", ErrMalformedRequestLine, err)
	}

	reqLine, err := ParseRequestLine(line)
	if err != nil {
		return err
	}

	var request Request
	request.RequestLine = reqLine

	// HTTP/0.9 has neither headers nor body.
	if !reqLine.Version.IsSimple() {
		if err := rd.decodeHeaders(&request.Headers); err != nil {
			return errors.Wrap(err, "parsing headers")
		}

		if rd.opts.readsBody(reqLine.Method) {
			if err := rd.decodeBody(&request); err != nil {
				return errors.Wrap(err, "reading body")
			}
		}
	}

	*r = request

	return nil
}

func (rd *RequestDecoder) decodeHeaders(headers *Headers) error {
	for {
		fieldLine, err := rd.lr.ReadLine()
		if err != nil {
			if errors.Is(err, iolib.ErrBufferLimit) {
				return fmt.Errorf("%w: %w", ErrFieldLineTooLong, err)
			}
			// A dropped connection ends the headers.
			return nil
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more headers.
			return nil
		}

		field, err := ParseField(fieldLine)
		if err != nil {
			// Malformed lines are skipped.
			continue
		}

		headers.Add(field.Name, field.Value)
	}
}

func (rd *RequestDecoder) decodeBody(r *Request) error {
	contentType, okType := r.Headers.Get("Content-Type")
	contentLength, okLength := r.Headers.Get("Content-Length")
	if !okType || !okLength {
		return ErrMissingBodyHeaders
	}

	if !isFormContentType(contentType) {
		// Left on the stream for the handler.
		return nil
	}

	length, err := strconv.ParseUint(strings.TrimSpace(contentLength), 10, 64)
	if err != nil {
		return errors.Wrapf(ErrInvalidContentLength, "%q", contentLength)
	}

	body, err := rd.lr.ReadFull(uint(length))
	if err != nil {
		if errors.Is(err, iolib.ErrBufferLimit) {
			return fmt.Errorf("%w: %w", ErrContentTooLarge, err)
		}
		return fmt.Errorf("%w: expected %d bytes: %w", ErrShortBody, length, err)
	}

	r.Body = body

	return nil
}

func isFormContentType(contentType string) bool {
	return len(contentType) >= len(FormContentType) &&
		strings.EqualFold(contentType[:len(FormContentType)], FormContentType)
}

var ErrMalformedStatusLine = errors.New("status line is malformed")

// Response is a response as read from or written to the wire.
type Response struct {
	StatusLine
	Headers Headers
	Body    []byte
}

type StatusLine struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string
}

type ResponseDecoder struct {
	lr *iolib.LineReader
}

func NewResponseDecoder(r io.Reader, opts DecodeOptions) *ResponseDecoder {
	lr, ok := r.(*iolib.LineReader)
	if !ok {
		lr = iolib.NewLineReader(r, opts.lineOptions())
	}
	return &ResponseDecoder{lr: lr}
}

// Decode reads a full response. Without Content-Length,
// the body runs until the stream ends.
// r MUST be a non-nil pointer
func (rd *ResponseDecoder) Decode(r *Response) error {
	line, err := rd.lr.ReadLine()
	if err != nil {
		return errors.Wrap(err, "reading status line")
	}

	statLine, err := parseStatusLine(line)
	if err != nil {
		return errors.Wrap(ErrMalformedStatusLine, err.Error())
	}

	var response Response
	response.StatusLine = statLine

	for {
		fieldLine, err := rd.lr.ReadLine()
		if err != nil {
			return errors.Wrap(err, "reading headers")
		}
		if len(fieldLine) == 0 {
			break
		}

		field, err := ParseField(fieldLine)
		if err != nil {
			return err
		}
		response.Headers.Add(field.Name, field.Value)
	}

	if v, ok := response.Headers.Get("Content-Length"); ok {
		length, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidContentLength, "%q", v)
		}
		if response.Body, err = rd.lr.ReadFull(uint(length)); err != nil {
			return errors.Wrap(err, "reading body")
		}
	} else {
		// The body ends when the server hangs up.
		body, err := io.ReadAll(rd.lr)
		if err != nil && !errors.Is(err, transport.ErrConnClosed) {
			return errors.Wrap(err, "reading body")
		}
		response.Body = body
	}

	*r = response

	return nil
}

func parseStatusLine(line []byte) (StatusLine, error) {
	parts := strings.SplitN(string(line), " ", 3)
	if len(parts) < 2 {
		return StatusLine{}, errors.New("status line is malformed")
	}

	ver, err := ParseVersion(parts[0])
	if err != nil {
		return StatusLine{}, errors.Wrap(err, "parsing version")
	}

	statusCodeStr := parts[1]
	statusCode, err := strconv.ParseUint(statusCodeStr, 10, 64)
	if err != nil || len(statusCodeStr) != 3 {
		return StatusLine{}, errors.Errorf("status code is malformed: %q", statusCodeStr)
	}

	// reason-phrase is optional.
	reasonPhrase := ""
	if len(parts) == 3 {
		reasonPhrase = parts[2]
	}

	return StatusLine{Version: ver, StatusCode: uint(statusCode), ReasonPhrase: reasonPhrase}, nil
}
