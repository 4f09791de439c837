// Command aqaasm interprets an AQA-style assembly program.
//
// Default mode reads one line of decimal input, seeds memory address 100,
// runs the program, and prints memory address 101. With -i and -o the
// seeded and printed addresses are given explicitly:
//
//	aqaasm program.aqaasm -i 100 105 -o 101 102
//
// reads one input line per -i address and prints one line per -o address.
// -trace echoes each executed instruction to stderr.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/TSOJO/isolate-wrapper/internal/aqaasm"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usage: aqaasm <file> [-i <addrs...>] [-o <addrs...>] [-trace]\n")
		os.Exit(1)
	}

	code, err := os.ReadFile(opts.programPath)
	if err != nil {
		fail(fmt.Sprintf("Cannot read program file %s", opts.programPath))
	}

	machine := aqaasm.New()
	if opts.trace {
		machine.Trace = func(line int, text string) {
			fmt.Fprintf(os.Stderr, "%4d  %s\n", line, text)
		}
	}

	reader := bufio.NewReader(os.Stdin)
	for _, addr := range opts.inputs {
		line, _ := reader.ReadString('\n')
		value, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fail(fmt.Sprintf("Invalid decimal input for address %d", addr))
		}
		if err := machine.SetMemory(addr, value); err != nil {
			fail(err.Error())
		}
	}

	if err := machine.Run(string(code)); err != nil {
		fail(err.Error())
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, addr := range opts.outputs {
		value, err := machine.GetMemory(addr)
		if err != nil {
			fail(err.Error())
		}
		fmt.Fprintln(out, value)
	}
}

// fail reports an interpreter fault the way the judge's error digest
// expects: a single Exception line on stderr and a non-zero exit.
func fail(msg string) {
	fmt.Fprintf(os.Stderr, "Exception: %s\n", msg)
	os.Exit(1)
}

type options struct {
	programPath string
	inputs      []int
	outputs     []int
	trace       bool
}

// parseArgs hand-parses the tiny argv grammar: a program path plus -i/-o
// address lists and -trace, in any order.
func parseArgs(args []string) (options, error) {
	opts := options{}
	var target *[]int
	for _, arg := range args {
		switch arg {
		case "-i":
			opts.inputs = []int{}
			target = &opts.inputs
			continue
		case "-o":
			opts.outputs = []int{}
			target = &opts.outputs
			continue
		case "-trace":
			opts.trace = true
			target = nil
			continue
		}
		if target != nil {
			addr, err := strconv.Atoi(arg)
			if err != nil {
				return options{}, fmt.Errorf("invalid address: %s", arg)
			}
			*target = append(*target, addr)
			continue
		}
		if opts.programPath != "" {
			return options{}, fmt.Errorf("unexpected argument: %s", arg)
		}
		opts.programPath = arg
	}
	if opts.programPath == "" {
		return options{}, fmt.Errorf("program file is required")
	}
	// The classic contract: one stdin line into 100, print 101. Empty -i/-o
	// lists fall back to it too, so the judge can always pass the flags.
	if len(opts.inputs) == 0 {
		opts.inputs = []int{100}
	}
	if len(opts.outputs) == 0 {
		opts.outputs = []int{101}
	}
	return opts, nil
}
