package transport

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// Addr is where a connection ends: a host and a port.
// Host may be an IP address, a name, or any label a transport picks.
type Addr struct {
	Host string
	Port uint16
}

// ParseAddr parses "host:port". IPv6 hosts come in brackets.
func ParseAddr(s string) (Addr, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Addr{}, errors.Wrapf(err, "splitting %q", s)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Addr{}, errors.Wrapf(err, "invalid port %q", portStr)
	}

	return Addr{Host: host, Port: uint16(port)}, nil
}

// AddrFrom converts a [net.Addr] such as [net.TCPAddr].
func AddrFrom(na net.Addr) Addr {
	if na == nil {
		return Addr{}
	}
	if addr, err := ParseAddr(na.String()); err == nil {
		return addr
	}
	// Unix sockets and the like have no port.
	return Addr{Host: na.String()}
}

func (a Addr) String() string {
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}
