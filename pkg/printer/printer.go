package printer

import (
	"fmt"
	"net"
	"os"
	"time"
)

const (
	dialTimeout   = 5 * time.Second
	writeTimeout  = 10 * time.Second
	statusTimeout = 2 * time.Second
)

// Printer delivers a rendered bill, as raw ESC/POS bytes, to a thermal
// receipt printer. Implementations connect per job so a flaky printer
// never holds a stale handle between bills.
type Printer interface {
	// Print ships one rendered bill to the device.
	Print(data []byte) error
	// Close releases any held resources.
	Close() error
	// IsConnected reports whether the device is currently reachable.
	IsConnected() bool
}

// usbPrinter writes bills straight to a character device such as
// /dev/usb/lp0. The kernel lp driver handles the actual transfer.
type usbPrinter struct {
	devicePath string
}

// NewUSBPrinter returns a Printer backed by a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{devicePath: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	dev, err := os.OpenFile(p.devicePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.devicePath, err)
	}
	defer dev.Close()

	if _, err := dev.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.devicePath, err)
	}
	return nil
}

// Close is a no-op; the device file is opened per bill.
func (p *usbPrinter) Close() error { return nil }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.devicePath)
	return err == nil
}

// networkPrinter dials the printer's raw TCP port for each bill.
// Most ESC/POS printers listen on port 9100.
type networkPrinter struct {
	addr string
}

// NewNetworkPrinter returns a Printer that dials addr over TCP.
// addr must include the port, e.g. "10.0.0.21:9100".
func NewNetworkPrinter(addr string) Printer {
	return &networkPrinter{addr: addr}
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.addr, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.addr, err)
	}
	return nil
}

// Close is a no-op; the connection is dialed per bill.
func (p *networkPrinter) Close() error { return nil }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.addr, statusTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// nullPrinter swallows every bill. Used when the restaurant runs
// without printer hardware, and in tests.
type nullPrinter struct{}

// NewNullPrinter returns a Printer that discards everything.
func NewNullPrinter() Printer { return &nullPrinter{} }

func (p *nullPrinter) Print([]byte) error { return nil }
func (p *nullPrinter) Close() error       { return nil }
func (p *nullPrinter) IsConnected() bool  { return false }

// NewPrinterFromConfig picks a Printer implementation from config.
// printerType is "usb", "network" or "none"; an empty type means none.
func NewPrinterFromConfig(printerType, usbPath, address string) (Printer, error) {
	switch printerType {
	case "usb":
		if usbPath == "" {
			return nil, fmt.Errorf("printer: usb type needs a device path")
		}
		return NewUSBPrinter(usbPath), nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: network type needs an address")
		}
		return NewNetworkPrinter(address), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown type %q (want usb, network or none)", printerType)
	}
}
