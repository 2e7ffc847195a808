// Package graphite writes metrics using the carbon plaintext protocol.
package graphite

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const BatchSize = 4096

type IGraphite interface {
	Add(path string, timestamp int64, value float64) error
	Flush() error
}

type Graphite struct {
	addr   string
	buffer strings.Builder
}

var dailer = func(network, address string) (io.ReadWriteCloser, error) {
	return net.DialTimeout(network, address, 5*time.Second)
}

// New writer for a carbon receiver at host:port.
func New(addr string) *Graphite {
	if !strings.Contains(addr, ":") {
		addr += ":2003"
	}
	return &Graphite{addr: addr}
}

func (graphite *Graphite) Add(path string, timestamp int64, value float64) error {
	fmt.Fprintf(&graphite.buffer, "%s %v %d\n", path, value, timestamp)
	if graphite.buffer.Len() > BatchSize {
		return graphite.Flush()
	}
	return nil
}

func (graphite *Graphite) Flush() error {
	if graphite.buffer.Len() == 0 {
		return nil
	}
	defer graphite.buffer.Reset()
	conn, err := dailer("tcp", graphite.addr)
	if err != nil {
		return errors.Wrapf(err, "graphite: dial %s", graphite.addr)
	}
	defer conn.Close()
	if _, err := io.WriteString(conn, graphite.buffer.String()); err != nil {
		return errors.Wrap(err, "graphite: write")
	}
	return nil
}

// Sanitize makes s safe to use as one element of a metric path.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '/', '\t':
			return '_'
		}
		return r
	}, s)
}
