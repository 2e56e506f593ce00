package devicelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"unicode/utf8"
)

const udpBufSize = 1024

// UDPListener receives debug datagrams from embedded clients and forwards
// them to a Sink.
type UDPListener struct {
	conn *net.UDPConn
	sink *Sink
	log  *slog.Logger
}

func ListenUDP(addr string, sink *Sink, log *slog.Logger) (*UDPListener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("couldn't resolve UDP address %s:\n%w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("couldn't bind UDP socket %s:\n%w", addr, err)
	}
	return &UDPListener{conn: conn, sink: sink, log: log}, nil
}

// Run reads datagrams until the context is cancelled or the socket closes.
func (l *UDPListener) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		l.conn.Close()
	}()

	l.log.Info("UDP listener started", "addr", l.conn.LocalAddr())

	buf := make([]byte, udpBufSize)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				l.log.Error("UDP read failed", "err", err)
			}
			return
		}

		data := buf[:n]
		if utf8.Valid(data) {
			l.log.Info("device message", "addr", addr, "message", string(data))
			if err := l.sink.WriteText(addr.String(), string(data)); err != nil {
				l.log.Error("couldn't log device message", "err", err)
			}
		} else {
			l.log.Info("binary device message", "addr", addr, "bytes", n)
			if err := l.sink.WriteBinary(addr.String(), data); err != nil {
				l.log.Error("couldn't log device message", "err", err)
			}
		}
	}
}

// Addr is the bound address, useful when the listener was started on port 0.
func (l *UDPListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}
