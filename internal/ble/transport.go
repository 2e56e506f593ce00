// Package ble delivers finished print jobs to the printer over Bluetooth
// Low Energy. The device advertises a vendor service (0xAE30) with a
// write-without-response characteristic (0xAE01) that accepts the raw
// command stream in small chunks.
package ble

import (
	"errors"
	"log/slog"
	"time"

	"tinygo.org/x/bluetooth"
)

const (
	// chunkSize is the largest write the printer accepts per BLE packet.
	chunkSize = 20
	// chunkDelay paces writes so the firmware's buffer keeps up.
	chunkDelay = 5 * time.Millisecond
)

var (
	serviceUUID = bluetooth.New16BitUUID(0xAE30)
	writerUUID  = bluetooth.New16BitUUID(0xAE01)
)

type Transport struct {
	device bluetooth.Device
	writer bluetooth.DeviceCharacteristic
}

// Connect scans for a printer advertising the given local name and prepares
// its write characteristic.
func Connect(adapter *bluetooth.Adapter, name string, timeout time.Duration) (*Transport, error) {
	devices := make(chan bluetooth.ScanResult, 1)

	go func() {
		err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.LocalName() == name {
				slog.Info("Found device:",
					"deviceName", result.LocalName(),
				)
				devices <- result
				adapter.StopScan()
			}
		})
		if err != nil {
			slog.Error("Failed to scan for devices:",
				"err", err,
			)
			close(devices)
		}
	}()

	var found bluetooth.ScanResult
	select {
	case dev, ok := <-devices:
		if !ok {
			return nil, errors.New("scan failed")
		}
		found = dev
	case <-time.After(timeout):
		adapter.StopScan()
		return nil, errors.New("no printer found before timeout")
	}

	slog.Debug("Connecting to device...")
	device, err := adapter.Connect(found.Address, bluetooth.ConnectionParams{})
	if err != nil {
		slog.Error("Failed to connect to device:",
			"err", err,
		)
		return nil, err
	}

	slog.Debug("Discovering service...")
	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		slog.Error("Failed to discover service:",
			"err", err,
		)
		device.Disconnect()
		return nil, err
	}

	slog.Debug("Discovering characteristics...")
	characteristics, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{writerUUID})
	if err != nil {
		slog.Error("Failed to discover characteristics:",
			"err", err,
		)
		device.Disconnect()
		return nil, err
	}

	return &Transport{device: device, writer: characteristics[0]}, nil
}

// Send writes a complete job buffer to the printer in paced chunks.
func (t *Transport) Send(job []byte) error {
	for i := 0; i < len(job); i += chunkSize {
		end := min(i+chunkSize, len(job))
		if _, err := t.writer.WriteWithoutResponse(job[i:end]); err != nil {
			slog.Error("Couldn't write command data",
				"err", err,
			)
			return err
		}
		time.Sleep(chunkDelay)
	}
	return nil
}

func (t *Transport) Close() error {
	return t.device.Disconnect()
}
