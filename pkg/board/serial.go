//go:build !tinygo

package board

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"go.bug.st/serial"
)

var (
	_ Link       = (*Serial)(nil)
	_ GPIO       = (*Serial)(nil)
	_ BankWriter = (*Serial)(nil)
)

const (
	// DefaultBaudRate is the standard baud rate for XIAO SAMD21.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the button press channel buffer.
	DefaultBufferSize = 16
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial drives an LED bar on a board attached over UART. Levels are sent
// as mask lines (see EncodeMask); the board reports button releases as
// "B" lines.
type Serial struct {
	port     string
	baudRate int
	pins     []int

	conn      serial.Port
	presses   chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Last levels sent, indexed like pins.
	mask    uint32
	written bool
	failed  int

	log *slog.Logger
}

// NewSerial creates an LED bar link on port. pins lists the logical pin
// numbers in bar order; WriteDigital calls for other pins are ignored.
func NewSerial(port string, baudRate int, pins []int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		pins:     append([]int(nil), pins...),
		presses:  make(chan struct{}, DefaultBufferSize),
		ctx:      ctx,
		cancel:   cancel,
		log:      slog.Default().With("component", "serial", "port", port),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading board events.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	// A closed link gets a fresh context and press channel.
	if d.ctx.Err() != nil {
		d.ctx, d.cancel = context.WithCancel(context.Background())
		d.presses = make(chan struct{}, DefaultBufferSize)
	}

	d.conn = port
	d.connected = true
	d.written = false

	go d.readEvents(port)

	d.log.Info("connected", "baud", d.baudRate)
	return nil
}

// Close closes the connection and stops reading events.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			d.log.Error("closing serial port", "error", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.presses)

	return nil
}

// Presses delivers one value per button release reported by the board.
// The channel is closed by Close; call Presses again after reconnecting.
func (d *Serial) Presses() <-chan struct{} {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.presses
}

// IsConnected returns whether the link is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Failures returns the number of mask lines that could not be written.
func (d *Serial) Failures() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.failed
}

// WriteDigital sets one LED of the bar and sends the resulting mask.
func (d *Serial) WriteDigital(pin int, high bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, p := range d.pins {
		if p != pin {
			continue
		}
		mask := d.mask &^ (1 << i)
		if high {
			mask |= 1 << i
		}
		d.send(mask)
		return
	}
}

// WriteMask sends the levels of the whole bar in a single line. pins must
// be in bar order.
func (d *Serial) WriteMask(pins []int, mask uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(pins) > len(d.pins) {
		mask &= LevelMask(len(d.pins))
	}
	d.send(mask)
}

// send writes a mask line when the bar changes. Callers hold d.mu.
func (d *Serial) send(mask uint32) {
	if d.written && mask == d.mask {
		return
	}
	d.mask = mask
	if !d.connected {
		return
	}

	if _, err := io.WriteString(d.conn, EncodeMask(mask, len(d.pins))); err != nil {
		d.failed++
		d.log.Warn("failed to send led mask", "error", err)
		return
	}
	d.written = true
}

// readEvents reads lines from the board until the link is closed.
func (d *Serial) readEvents(conn io.Reader) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic in readEvents", "panic", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if d.ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !d.handleLine(line) {
			return
		}
	}

	if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
		d.log.Error("reading from serial port", "error", err)
	}
}

// handleLine dispatches one board line. It returns false once the link is
// shutting down.
func (d *Serial) handleLine(line string) bool {
	switch {
	case line == "B":
		d.mu.RLock()
		defer d.mu.RUnlock()
		if !d.connected {
			return false
		}
		select {
		case d.presses <- struct{}{}:
		default:
			d.log.Warn("press channel full, dropping press")
		}
	case strings.HasPrefix(line, "#"):
		d.log.Debug("board", "msg", strings.TrimSpace(line[1:]))
	default:
		d.log.Debug("ignoring line", "line", line)
	}
	return true
}
