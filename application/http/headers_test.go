package http

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HeadersTestSuite struct {
	suite.Suite

	headers Headers
}

func TestHeadersTestSuite(t *testing.T) {
	suite.Run(t, new(HeadersTestSuite))
}

func (s *HeadersTestSuite) SetupTest() {
	s.headers = Headers{}
	s.headers.Add("Host", "example.com")
	s.headers.Add("Accept", "text/html")
	s.headers.Add("accept", "application/xml")
}

func (s *HeadersTestSuite) TestAddKeepsDuplicates() {
	s.Equal(3, s.headers.Count())
	s.Equal(Headers{
		{"Host", "example.com"},
		{"Accept", "text/html"},
		{"accept", "application/xml"},
	}, s.headers)
}

func (s *HeadersTestSuite) TestGet() {
	testcases := []struct {
		key      string
		expected string
		ok       bool
	}{
		{key: "Host", expected: "example.com", ok: true},
		{key: "HOST", expected: "example.com", ok: true},
		{key: "ACCEPT", expected: "text/html", ok: true},
		{key: "Missing", expected: "", ok: false},
	}

	for _, tc := range testcases {
		s.Run(tc.key, func() {
			v, ok := s.headers.Get(tc.key)
			s.Equal(tc.ok, ok)
			s.Equal(tc.expected, v)
		})
	}
}

func (s *HeadersTestSuite) TestValues() {
	s.Equal([]string{"text/html", "application/xml"}, s.headers.Values("Accept"))
	s.Nil(s.headers.Values("Missing"))
	s.True(s.headers.Has("host"))
}

func (s *HeadersTestSuite) TestSet() {
	s.headers.Set("ACCEPT", "*/*")
	s.Equal(Headers{
		{"Host", "example.com"},
		{"Accept", "*/*"},
	}, s.headers)

	s.headers.Set("Server", "litehttpd")
	v, ok := s.headers.Get("server")
	s.True(ok)
	s.Equal("litehttpd", v)
}

func (s *HeadersTestSuite) TestDel() {
	s.headers.Del("accept")
	s.Equal(Headers{{"Host", "example.com"}}, s.headers)
}

func (s *HeadersTestSuite) TestClone() {
	clone := s.headers.Clone()
	clone.Set("Host", "other")

	v, _ := s.headers.Get("Host")
	s.Equal("example.com", v)
}

func TestHeadersWriteTo(t *testing.T) {
	h := Headers{
		{"Content-Type", "text/plain"},
		{"X-Dup", "1"},
		{"X-Dup", "2"},
	}

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)

	expected := "Content-Type: text/plain\r\nX-Dup: 1\r\nX-Dup: 2\r\n"
	assert.Equal(t, expected, buf.String())
	assert.Equal(t, int64(len(expected)), n)
}
