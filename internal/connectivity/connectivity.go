// Package connectivity supplies the boolean "is a network path available"
// signal the facade consults before spending a network timeout.
package connectivity

import (
	"net"
	"sync"
	"time"
)

// Checker reports whether a network path is currently available.
type Checker interface {
	Connected() bool
}

// Static is a fixed checker, used in tests and to disable probing.
type Static struct {
	Online bool
}

func (s Static) Connected() bool {
	return s.Online
}

// Probe checks reachability by dialing a well-known endpoint. Results are
// cached briefly so a burst of facade calls does not dial once per call.
type Probe struct {
	target   string
	timeout  time.Duration
	interval time.Duration
	dial     func(network, addr string, timeout time.Duration) (net.Conn, error)

	mu        sync.Mutex
	lastCheck time.Time
	lastState bool
}

// NewProbe creates a probe against the given "host:port" target.
func NewProbe(target string) *Probe {
	if target == "" {
		target = "1.1.1.1:443"
	}
	return &Probe{
		target:   target,
		timeout:  2 * time.Second,
		interval: 5 * time.Second,
		dial:     net.DialTimeout,
	}
}

func (p *Probe) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.lastCheck) < p.interval {
		return p.lastState
	}

	conn, err := p.dial("tcp", p.target, p.timeout)
	if conn != nil {
		conn.Close()
	}
	p.lastCheck = time.Now()
	p.lastState = err == nil
	return p.lastState
}
