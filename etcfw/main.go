// Command etcfw is the ETC firmware entry point: it wires the sensor/console
// main loop to a high-priority CAN dispatch loop sharing one etc.Controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"

	"etc-firmware/can"
	"etc-firmware/console"
	"etc-firmware/etc"
	"etc-firmware/hal"
	"etc-firmware/utils"
)

func main() {
	canIface := flag.String("can-iface", "vcan0", "SocketCAN interface name")
	canMapPath := flag.String("can-map", "config/can/can_map.csv", "path to the CAN frame/signal dictionary")
	serialPort := flag.String("serial-port", "", "console serial port device; empty runs without a console")
	logPath := flag.String("log", "etcfw.log", "path to the firmware log file")
	logLevel := flag.String("log-level", "info", "minimum log level (trace|debug|info|warn|error|critical)")
	flag.Parse()

	logger, err := utils.NewFileLogger(*logPath, utils.ParseLevel(*logLevel), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "etcfw: open log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	frameMap, err := can.LoadMap(*canMapPath)
	if err != nil {
		logger.Critical("load CAN map: %v", err)
		os.Exit(1)
	}

	he1Sim := hal.NewSimAnalogReader()
	he2Sim := hal.NewSimAnalogReader()
	rtdsPin := hal.NewSimDigitalOut()
	hal.SetAnalogReader("he1", he1Sim)
	hal.SetAnalogReader("he2", he2Sim)
	hal.SetDigitalOut("rtds", rtdsPin)

	ctrl := etc.New(rtdsPin)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	transport, err := can.DialSocketCAN(ctx, *canIface)
	if err != nil {
		logger.Critical("dial CAN interface %s: %v", *canIface, err)
		os.Exit(1)
	}
	defer transport.Close()

	wrapper := can.NewWrapper(transport, frameMap, ctrl, logger)
	go func() {
		if err := wrapper.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("can wrapper stopped: %v", err)
		}
	}()

	var port serial.Port
	if *serialPort != "" {
		port, err = serial.Open(*serialPort, &serial.Mode{BaudRate: 115200})
		if err != nil {
			logger.Critical("open serial port %s: %v", *serialPort, err)
			os.Exit(1)
		}
		defer port.Close()
		// Matches the source firmware's set_blocking(false): Console.Read
		// must never stall the main loop waiting on input.
		port.SetReadTimeout(time.Millisecond)
	}

	runMainLoop(ctx, ctrl, he2Sim, port, logger)
}

func runMainLoop(ctx context.Context, ctrl *etc.Controller, he2Sim *hal.SimAnalogReader, port serial.Port, logger *utils.Logger) {
	var repl *console.Console
	var dispatcher *console.Dispatcher
	if port != nil {
		repl = console.New(port)
		dispatcher = console.NewDispatcher(repl, ctrl, he2Sim)
		repl.Write("> ", false)
	}

	readFromSensors := true
	var he2Read float64

	for ctx.Err() == nil {
		if readFromSensors {
			v, err := he2Sim.Read()
			if err != nil {
				logger.Warn("read he2: %v", err)
			} else {
				he2Read = v
			}
		}

		if repl != nil && repl.Read() {
			line := repl.GetInput()
			response := dispatcher.Dispatch(line)
			repl.Write(response, true)
			readFromSensors = !dispatcher.HardwareOverridden()
			repl.Write("> ", false)
		}

		// Per the original firmware, only HE2 feeds the main loop's
		// per-iteration pedal-travel refresh; HE1 is never sampled here.
		ctrl.UpdatePedalTravel(0.0, he2Read)
		time.Sleep(time.Millisecond)
	}
}
