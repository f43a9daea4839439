package http

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	iolib "litehttpd/lib/io"
	"litehttpd/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RequestDecoderTestSuite struct {
	suite.Suite
}

func TestRequestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(RequestDecoderTestSuite))
}

func (s *RequestDecoderTestSuite) TestDecode() {
	testcases := []struct {
		desc     string
		opts     DecodeOptions
		input    string
		expected Request
		wantErr  error
	}{
		{
			desc:  "get with headers",
			input: "GET /a?x=1 HTTP/1.1\r\nHost: example.com\r\nAccept: text/html\r\n\r\n",
			expected: Request{
				RequestLine: RequestLine{
					Method: "GET", URL: "/a?x=1", Path: "/a",
					RawQuery: "x=1", HasQuery: true, Version: Version11,
				},
				Headers: Headers{{"Host", "example.com"}, {"Accept", "text/html"}},
			},
		},
		{
			desc:  "sole LF terminators",
			input: "GET / HTTP/1.0\nHost: a\n\n",
			expected: Request{
				RequestLine: RequestLine{Method: "GET", URL: "/", Path: "/", Version: Version10},
				Headers:     Headers{{"Host", "a"}},
			},
		},
		{
			desc:  "simple request has no headers",
			input: "GET /old\r\nHost: ignored\r\n\r\n",
			expected: Request{
				RequestLine: RequestLine{Method: "GET", URL: "/old", Path: "/old", Version: Version09},
			},
		},
		{
			desc:  "malformed header lines are skipped",
			input: "GET / HTTP/1.0\r\nbad header\r\nHost: a\r\n\r\n",
			expected: Request{
				RequestLine: RequestLine{Method: "GET", URL: "/", Path: "/", Version: Version10},
				Headers:     Headers{{"Host", "a"}},
			},
		},
		{
			desc:  "dropped connection ends the headers",
			input: "GET / HTTP/1.0\r\nHost: a\r\nAcc",
			expected: Request{
				RequestLine: RequestLine{Method: "GET", URL: "/", Path: "/", Version: Version10},
				Headers:     Headers{{"Host", "a"}},
			},
		},
		{
			desc: "form post",
			input: "POST /form HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 7\r\n\r\n" +
				"a=1&b=2",
			expected: Request{
				RequestLine: RequestLine{Method: "POST", URL: "/form", Path: "/form", Version: Version10},
				Headers: Headers{
					{"Content-Type", "application/x-www-form-urlencoded"},
					{"Content-Length", "7"},
				},
				Body: []byte("a=1&b=2"),
			},
		},
		{
			desc: "form content type with parameters",
			input: "POST /form HTTP/1.0\r\n" +
				"Content-Type: Application/X-WWW-Form-Urlencoded; charset=utf-8\r\n" +
				"Content-Length: 3\r\n\r\n" +
				"a=1",
			expected: Request{
				RequestLine: RequestLine{Method: "POST", URL: "/form", Path: "/form", Version: Version10},
				Headers: Headers{
					{"Content-Type", "Application/X-WWW-Form-Urlencoded; charset=utf-8"},
					{"Content-Length", "3"},
				},
				Body: []byte("a=1"),
			},
		},
		{
			desc: "other body types are left unread",
			input: "POST /upload HTTP/1.0\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: 5\r\n\r\n" +
				"hello",
			expected: Request{
				RequestLine: RequestLine{Method: "POST", URL: "/upload", Path: "/upload", Version: Version10},
				Headers: Headers{
					{"Content-Type", "text/plain"},
					{"Content-Length", "5"},
				},
			},
		},
		{
			desc: "put body read when configured",
			opts: DecodeOptions{BodyMethods: []string{"POST", "PUT"}},
			input: "PUT /x HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 3\r\n\r\n" +
				"k=v",
			expected: Request{
				RequestLine: RequestLine{Method: "PUT", URL: "/x", Path: "/x", Version: Version10},
				Headers: Headers{
					{"Content-Type", "application/x-www-form-urlencoded"},
					{"Content-Length", "3"},
				},
				Body: []byte("k=v"),
			},
		},
		{
			desc:    "empty request line",
			input:   "\r\n",
			wantErr: ErrMalformedRequestLine,
		},
		{
			desc:    "nothing sent",
			input:   "",
			wantErr: ErrMalformedRequestLine,
		},
		{
			desc:    "request line exceeding limit",
			opts:    DecodeOptions{InitialLineSize: 4, MaxLineSize: 8},
			input:   "GET /very/long/path HTTP/1.1\r\n\r\n",
			wantErr: ErrRequestLineTooLong,
		},
		{
			desc:    "field line exceeding limit",
			opts:    DecodeOptions{InitialLineSize: 4, MaxLineSize: 16},
			input:   "GET / HTTP/1.1\r\nX-Long: aaaaaaaaaaaaaaaaaa\r\n\r\n",
			wantErr: ErrFieldLineTooLong,
		},
		{
			desc:    "post without content length",
			input:   "POST / HTTP/1.0\r\nContent-Type: application/x-www-form-urlencoded\r\n\r\n",
			wantErr: ErrMissingBodyHeaders,
		},
		{
			desc:    "post without content type",
			input:   "POST / HTTP/1.0\r\nContent-Length: 3\r\n\r\na=1",
			wantErr: ErrMissingBodyHeaders,
		},
		{
			desc: "invalid content length",
			input: "POST / HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: ten\r\n\r\n",
			wantErr: ErrInvalidContentLength,
		},
		{
			desc: "short body",
			input: "POST / HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 10\r\n\r\n" +
				"a=1&b",
			wantErr: ErrShortBody,
		},
		{
			desc: "declared length far beyond the body",
			input: "POST / HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 9223372036854775807\r\n\r\n" +
				"a=1",
			wantErr: ErrShortBody,
		},
		{
			desc:    "line limit below the initial line size",
			opts:    DecodeOptions{MaxLineSize: 16},
			input:   "GET /" + strings.Repeat("a", 100) + " HTTP/1.1\r\n\r\n",
			wantErr: ErrRequestLineTooLong,
		},
		{
			desc: "content exceeding limit",
			opts: DecodeOptions{MaxContentSize: 4},
			input: "POST / HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 7\r\n\r\n" +
				"a=1&b=2",
			wantErr: ErrContentTooLarge,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			opts := tc.opts
			if opts.InitialLineSize == 0 {
				opts.InitialLineSize = DefaultDecodeOptions.InitialLineSize
			}

			var request Request
			err := NewRequestDecoder(strings.NewReader(tc.input), opts).Decode(&request)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, request)
		})
	}
}

func (s *RequestDecoderTestSuite) TestLimitErrorsKeepBufferLimit() {
	testcases := []struct {
		desc    string
		opts    DecodeOptions
		input   string
		wantErr error
	}{
		{
			desc:    "request line",
			opts:    DecodeOptions{MaxLineSize: 8},
			input:   "GET /very/long/path HTTP/1.1\r\n\r\n",
			wantErr: ErrRequestLineTooLong,
		},
		{
			desc:    "field line",
			opts:    DecodeOptions{MaxLineSize: 16},
			input:   "GET / HTTP/1.1\r\nX-Long: aaaaaaaaaaaaaaaaaa\r\n\r\n",
			wantErr: ErrFieldLineTooLong,
		},
		{
			desc: "content",
			opts: DecodeOptions{MaxContentSize: 2},
			input: "POST / HTTP/1.0\r\n" +
				"Content-Type: application/x-www-form-urlencoded\r\n" +
				"Content-Length: 3\r\n\r\n" +
				"a=1",
			wantErr: ErrContentTooLarge,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			var request Request
			err := NewRequestDecoder(strings.NewReader(tc.input), tc.opts).Decode(&request)
			s.ErrorIs(err, tc.wantErr)
			s.ErrorIs(err, iolib.ErrBufferLimit)
		})
	}
}

func (s *RequestDecoderTestSuite) TestUnreadBodyStaysOnStream() {
	input := "POST /upload HTTP/1.0\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 5\r\n\r\n" +
		"hello"

	lr := iolib.NewLineReader(strings.NewReader(input), DefaultDecodeOptions.lineOptions())

	var request Request
	s.Require().NoError(NewRequestDecoder(lr, DefaultDecodeOptions).Decode(&request))
	s.Nil(request.Body)

	rest, err := io.ReadAll(lr)
	s.Require().NoError(err)
	s.Equal("hello", string(rest))
}

func TestResponseDecoderBodyUntilClose(t *testing.T) {
	input := "HTTP/1.0 200 OK\r\n\r\npartial"

	testcases := []struct {
		desc    string
		end     error
		wantErr error
	}{
		{desc: "peer hangs up", end: transport.ErrConnClosed},
		{desc: "deadline", end: transport.ErrDeadLineExceeded, wantErr: transport.ErrDeadLineExceeded},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			r := io.MultiReader(strings.NewReader(input), iotest.ErrReader(tc.end))

			var response Response
			err := NewResponseDecoder(r, DefaultDecodeOptions).Decode(&response)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, []byte("partial"), response.Body)
		})
	}
}

func TestResponseDecoderDecode(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected Response
		wantErr  bool
	}{
		{
			desc:  "with content length",
			input: "HTTP/1.0 200 OK\r\nContent-Length: 5\r\n\r\nhello trailing",
			expected: Response{
				StatusLine: StatusLine{Version: Version10, StatusCode: 200, ReasonPhrase: "OK"},
				Headers:    Headers{{"Content-Length", "5"}},
				Body:       []byte("hello"),
			},
		},
		{
			desc:  "body until close",
			input: "HTTP/1.0 404 Not Found\r\nServer: x\r\n\r\nmissing",
			expected: Response{
				StatusLine: StatusLine{Version: Version10, StatusCode: 404, ReasonPhrase: "Not Found"},
				Headers:    Headers{{"Server", "x"}},
				Body:       []byte("missing"),
			},
		},
		{
			desc:  "reason phrase is optional",
			input: "HTTP/1.1 204\r\n\r\n",
			expected: Response{
				StatusLine: StatusLine{Version: Version11, StatusCode: 204},
				Body:       []byte{},
			},
		},
		{
			desc:    "malformed status code",
			input:   "HTTP/1.0 2000 OK\r\n\r\n",
			wantErr: true,
		},
		{
			desc:    "missing version",
			input:   "200 OK\r\n\r\n",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			var response Response
			err := NewResponseDecoder(strings.NewReader(tc.input), DefaultDecodeOptions).Decode(&response)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedStatusLine)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, response)
		})
	}
}
