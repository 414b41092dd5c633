// Command calc is a standalone REPL over the Divider: it exists to exercise
// and demonstrate the reciprocal/division engine in isolation from the rest
// of the firmware.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"etc-firmware/divider"
)

func main() {
	d, err := divider.New(divider.DefaultLUT, 23, 23)
	if err != nil {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		fmt.Println(execute(d, scanner.Text()))
		fmt.Print("> ")
	}
}

func execute(d *divider.Divider, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "error: invalid opcode"
	}

	switch fields[0] {
	case "rcp":
		if len(fields) != 2 {
			return "error: usage: rcp <x>"
		}
		x, err := parseFloat32(fields[1])
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return formatFloat32(d.Reciprocal(x))

	case "div":
		if len(fields) != 3 {
			return "error: usage: div <n> <d>"
		}
		n, err := parseFloat32(fields[1])
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		den, err := parseFloat32(fields[2])
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return formatFloat32(d.Divide(n, den))

	default:
		return "error: invalid opcode"
	}
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return float32(v), nil
}

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
