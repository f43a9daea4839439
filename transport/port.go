package transport

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrNoEphemeralPort = errors.New("no ephemeral port available")

// PortTable hands out ports of one host.
type PortTable struct {
	table map[uint16]struct{}
	mu    sync.Mutex

	ephemeral  [2]uint16 // start, end
	rand       func() uint16
	maxRandTry uint
}

type EphemeralPortOptions struct {
	Range  [2]uint16 // [start, end)
	Rand   func() uint16
	MaxTry uint
}

// DefaultEphemeralPortOptions uses the IANA dynamic range
// and walks it in order.
func DefaultEphemeralPortOptions() EphemeralPortOptions {
	var (
		mu   sync.Mutex
		next uint16
	)
	return EphemeralPortOptions{
		Range: [2]uint16{49152, 65535},
		Rand: func() uint16 {
			mu.Lock()
			defer mu.Unlock()
			next++
			return next - 1
		},
		MaxTry: 64,
	}
}

func (o EphemeralPortOptions) validate() error {
	if o.Range[0] > o.Range[1] {
		return errors.Errorf("end(%d) must be greater or equal than start(%d)", o.Range[1], o.Range[0])
	}
	if o.Rand == nil {
		return errors.New("rand function must be provided")
	}
	return nil
}

func NewPortTable(opts EphemeralPortOptions) *PortTable {
	if err := opts.validate(); err != nil {
		panic(err)
	}

	return &PortTable{
		table:      make(map[uint16]struct{}),
		ephemeral:  opts.Range,
		rand:       opts.Rand,
		maxRandTry: opts.MaxTry,
	}
}

// Reserve takes port, or an ephemeral one if port is 0.
// release gives it back and is safe to call more than once.
func (p *PortTable) Reserve(port uint16) (result uint16, release func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if port == 0 {
		return p.reserveEphemeralLocked()
	}

	release, ok := p.reserveLocked(port)
	if !ok {
		return 0, nil, errors.Wrapf(ErrAddrAlreadyInUse, "port %d", port)
	}
	return port, release, nil
}

func (p *PortTable) reserveEphemeralLocked() (uint16, func(), error) {
	if p.ephemeral[0] == p.ephemeral[1] {
		return 0, nil, ErrNoEphemeralPort
	}

	for try := uint(0); try < p.maxRandTry; try++ {
		port := p.selectEphemeral()
		if port == 0 {
			continue
		}

		if release, ok := p.reserveLocked(port); ok {
			return port, release, nil
		}
	}

	return 0, nil, ErrNoEphemeralPort
}

func (p *PortTable) reserveLocked(port uint16) (release func(), ok bool) {
	if _, found := p.table[port]; found {
		return nil, false
	}

	p.table[port] = struct{}{}

	var once sync.Once
	release = func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.table, port)
		})
	}

	return release, true
}

func (p *PortTable) selectEphemeral() uint16 {
	gap := p.ephemeral[1] - p.ephemeral[0]
	return p.ephemeral[0] + (p.rand() % gap)
}
