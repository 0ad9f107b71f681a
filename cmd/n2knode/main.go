// Command n2knode runs a NMEA 2000 node against a real transport: a
// SocketCAN interface or an Actisense NGT-1/W2K-1 USB gateway. It claims an
// address, answers ISO Requests about itself, broadcasts a heartbeat and
// logs every other node it sees on the bus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarm/serial"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/actisense"
	"github.com/oceanbus/n2k-node/node"
	"github.com/oceanbus/n2k-node/pgn"
	"github.com/oceanbus/n2k-node/socketcan"
)

// messageReader is the read-side contract every transport satisfies.
type messageReader interface {
	Initialize() error
	Close() error
	ReadMessage(ctx context.Context) (n2k.Message, error)
}

// messageWriter is satisfied by transports with a message-level write
// (every actisense.* device); socketcan.Device only writes frames, so it is
// driven through frameWriter plus node.FragmentForWire instead.
type messageWriter interface {
	WriteMessage(ctx context.Context, msg n2k.Message) error
}

// frameWriter is satisfied by transports with a frame-level write.
type frameWriter interface {
	WriteFrame(f n2k.Frame) error
}

func main() {
	deviceAddr := flag.String("device", "/dev/ttyUSB0", "path to Actisense NGT-1 USB device, or a SocketCAN interface name with -input-format=socketcan")
	inputFormat := flag.String("input-format", "ngt", "transport format (ngt, n2k-bin, n2k-ascii, n2k-raw-ascii, ebl, socketcan)")
	baudRate := flag.Int("baud", 115200, "serial device baud rate")

	uniqueNumber := flag.Uint("name-unique-number", 1, "21-bit unique number for this node's ISO NAME")
	manufacturerCode := flag.Uint("name-manufacturer-code", 2046, "11-bit manufacturer code for this node's ISO NAME (2046 = reserved/self-configured)")
	deviceFunction := flag.Uint("name-device-function", 130, "ISO NAME device function code")
	deviceClass := flag.Uint("name-device-class", 25, "ISO NAME device class code")
	preferredSource := flag.Uint("preferred-source", 230, "source address to start ISO address claim from")
	modelID := flag.String("model-id", "n2k-node", "Product Information model ID")
	heartbeat := flag.Duration("heartbeat", node.DefaultHeartbeatInterval, "heartbeat broadcast interval")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := node.New(node.Config{
		Name: pgn.Name{
			UniqueNumber:     uint32(*uniqueNumber),
			ManufacturerCode: uint16(*manufacturerCode),
			DeviceFunction:   uint8(*deviceFunction),
			DeviceClass:      uint8(*deviceClass),
		},
		PreferredSource:   uint8(*preferredSource),
		ProductInfo:       pgn.ProductInformation{ModelID: *modelID, NMEA2000Version: 2100},
		ConfigInfo:        pgn.ConfigurationInformation{ManufacturerInformation: *modelID},
		HeartbeatInterval: *heartbeat,
	}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid node configuration:", err)
		os.Exit(1)
	}

	device, err := openDevice(ctx, *inputFormat, *deviceAddr, *baudRate, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open device:", err)
		os.Exit(1)
	}
	defer device.Close()

	if *inputFormat != "socketcan" {
		if err := device.Initialize(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to initialize device:", err)
			os.Exit(1)
		}
		time.Sleep(time.Second) // let the gateway warm up, mirroring cmd/n2kreader
	} else if err := device.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize interface:", err)
		os.Exit(1)
	}

	write := func(msgs []n2k.Message) {
		for _, err := range writeOut(ctx, device, n, msgs) {
			logger.Warn("failed to write message", "error", err)
		}
	}

	write(n.Start(time.Now()))

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	msgs := make(chan n2k.Message)
	readErrs := make(chan error, 1)
	go func() {
		for {
			msg, err := device.ReadMessage(ctx)
			if err != nil {
				readErrs <- err
				return
			}
			msgs <- msg
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case err := <-readErrs:
			logger.Error("read failed", "error", err)
			return
		case <-ticker.C:
			out, err := n.Tick(time.Now())
			write(out)
			if err != nil {
				logger.Error("node failure", "error", err)
				return
			}
		case msg := <-msgs:
			out, err := n.Receive(msg, time.Now())
			write(out)
			if err != nil {
				logger.Error("node failure", "error", err)
				return
			}
			if source, claimed := n.Source(); claimed && msg.Source != source {
				logger.Debug("received message", "pgn", msg.PGN, "source", msg.Source)
			}
		}
	}
}

func openDevice(ctx context.Context, inputFormat, deviceAddr string, baudRate int, logger *slog.Logger) (messageReader, error) {
	if inputFormat == "socketcan" {
		return socketcan.NewDevice(deviceAddr), nil
	}

	reader, err := serial.OpenPort(&serial.Config{
		Name:        deviceAddr,
		Baud:        baudRate,
		ReadTimeout: 100 * time.Millisecond,
		Size:        8,
	})
	if err != nil {
		return nil, err
	}

	config := actisense.Config{
		ReceiveDataTimeout:      5 * time.Second,
		DebugLogRawMessageBytes: logger.Enabled(ctx, slog.LevelDebug),
	}

	switch inputFormat {
	case "ngt", "n2k-bin":
		return actisense.NewBinaryDeviceWithConfig(reader, config), nil
	case "n2k-ascii":
		return actisense.NewN2kASCIIDeviceWithConfig(reader, config), nil
	case "n2k-raw-ascii":
		return actisense.NewRawASCIIDeviceWithConfig(reader, config), nil
	case "ebl":
		return actisense.NewEBLFormatDeviceWithConfig(reader, config), nil
	default:
		reader.Close()
		return nil, fmt.Errorf("unknown input format: %s", inputFormat)
	}
}

// writeOut writes msgs to device and returns every error encountered.
// A message whose transmission fails is handed back to n.Retry so it is
// attempted again on a later write, instead of being silently dropped.
func writeOut(ctx context.Context, device messageReader, n *node.Node, msgs []n2k.Message) []error {
	var errs []error
	retry := func(msg n2k.Message, writeErr error) {
		errs = append(errs, writeErr)
		if err := n.Retry(msg); err != nil {
			errs = append(errs, err)
		}
	}

	switch w := device.(type) {
	case messageWriter:
		for _, msg := range msgs {
			if err := w.WriteMessage(ctx, msg); err != nil {
				retry(msg, err)
			}
		}
	case frameWriter:
		for _, msg := range msgs {
			frames, err := n.Frames([]n2k.Message{msg})
			if err != nil {
				errs = append(errs, err)
				continue
			}
			for _, f := range frames {
				if err := w.WriteFrame(f); err != nil {
					retry(msg, err)
					break
				}
			}
		}
	default:
		for range msgs {
			errs = append(errs, fmt.Errorf("device does not support writing"))
		}
	}
	return errs
}
