package aqaasm_test

import (
	"errors"
	"testing"

	"github.com/TSOJO/isolate-wrapper/internal/aqaasm"
)

func mustRun(t *testing.T, m *aqaasm.Machine, program string) {
	t.Helper()
	if err := m.Run(program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func memory(t *testing.T, m *aqaasm.Machine, addr int) int {
	t.Helper()
	v, err := m.GetMemory(addr)
	if err != nil {
		t.Fatalf("get memory %d: %v", addr, err)
	}
	return v
}

func TestAddProgram(t *testing.T) {
	m := aqaasm.New()
	mustRun(t, m, "MOV R0, #5\nMOV R1, #7\nADD R2, R0, R1\nSTR R2, 101\nHALT")
	if got := memory(t, m, 101); got != 12 {
		t.Fatalf("memory[101] = %d, want 12", got)
	}
}

func TestLoadStoreRoundTrip(t *testing.T) {
	m := aqaasm.New()
	if err := m.SetMemory(100, 21); err != nil {
		t.Fatalf("seed memory: %v", err)
	}
	mustRun(t, m, "LDR R0, 100\nADD R1, R0, R0\nSTR R1, 101\nHALT")
	if got := memory(t, m, 101); got != 42 {
		t.Fatalf("memory[101] = %d, want 42", got)
	}
}

func TestArithmeticWrapsModulo256(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    int
	}{
		{"add overflow", "MOV R0, #200\nADD R1, R0, #100\nSTR R1, 0\nHALT", 44},
		{"sub underflow", "MOV R0, #5\nSUB R1, R0, #10\nSTR R1, 0\nHALT", 251},
		{"mvn", "MVN R1, #0\nSTR R1, 0\nHALT", 255},
		{"lsl overflow", "MOV R0, #129\nLSL R1, R0, #1\nSTR R1, 0\nHALT", 2},
		{"lsr", "MOV R0, #129\nLSR R1, R0, #1\nSTR R1, 0\nHALT", 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := aqaasm.New()
			mustRun(t, m, tt.program)
			if got := memory(t, m, 0); got != tt.want {
				t.Fatalf("memory[0] = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBitwiseOperations(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    int
	}{
		{"and", "MOV R0, #12\nAND R1, R0, #10\nSTR R1, 0\nHALT", 8},
		{"orr", "MOV R0, #12\nORR R1, R0, #3\nSTR R1, 0\nHALT", 15},
		{"eor", "MOV R0, #12\nEOR R1, R0, #10\nSTR R1, 0\nHALT", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := aqaasm.New()
			mustRun(t, m, tt.program)
			if got := memory(t, m, 0); got != tt.want {
				t.Fatalf("memory[0] = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoopWithLabels(t *testing.T) {
	// Multiplies 6 by 4 through repeated addition.
	program := `MOV R0, #0
MOV R1, #4
loop:
CMP R1, #0
BEQ done
ADD R0, R0, #6
SUB R1, R1, #1
B loop
done:
STR R0, 50
HALT`
	m := aqaasm.New()
	mustRun(t, m, program)
	if got := memory(t, m, 50); got != 24 {
		t.Fatalf("memory[50] = %d, want 24", got)
	}
}

func TestConditionalBranches(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    int
	}{
		{"beq not taken", "MOV R0, #1\nCMP R0, #2\nBEQ skip\nSTR R0, 0\nHALT\nskip:\nHALT", 1},
		{"bne taken", "MOV R0, #1\nCMP R0, #2\nBNE skip\nHALT\nskip:\nSTR R0, 0\nHALT", 1},
		{"bgt taken", "MOV R0, #3\nCMP R0, #2\nBGT skip\nHALT\nskip:\nSTR R0, 0\nHALT", 3},
		{"blt taken", "MOV R0, #1\nCMP R0, #2\nBLT skip\nHALT\nskip:\nSTR R0, 0\nHALT", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := aqaasm.New()
			mustRun(t, m, tt.program)
			if got := memory(t, m, 0); got != tt.want {
				t.Fatalf("memory[0] = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBranchWithoutCmp(t *testing.T) {
	m := aqaasm.New()
	err := m.Run("MOV R0, #1\nBEQ skip\nskip:\nHALT")
	var cmpErr *aqaasm.CmpNotSetError
	if !errors.As(err, &cmpErr) {
		t.Fatalf("expected CmpNotSetError, got %v", err)
	}
	if cmpErr.Line != 2 || cmpErr.Instruction != "BEQ" {
		t.Fatalf("unexpected error detail: %+v", cmpErr)
	}
}

func TestMalformedPrograms(t *testing.T) {
	tests := []struct {
		name    string
		program string
		line    int
	}{
		{"unknown instruction", "NOP\nHALT", 1},
		{"register out of range", "MOV R13, #1\nHALT", 1},
		{"memory out of range", "MOV R0, #1\nSTR R0, 1000\nHALT", 2},
		{"invalid operand", "MOV R0, five\nHALT", 1},
		{"unknown label", "B nowhere\nHALT", 1},
		{"wrong operand count", "ADD R0, R1\nHALT", 1},
		{"runs off the end", "MOV R0, #1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := aqaasm.New().Run(tt.program)
			var progErr *aqaasm.ProgramError
			if !errors.As(err, &progErr) {
				t.Fatalf("expected ProgramError, got %v", err)
			}
			if progErr.Line != tt.line {
				t.Fatalf("error line = %d, want %d", progErr.Line, tt.line)
			}
		})
	}
}

func TestRegisterWritesStayWithinByteRange(t *testing.T) {
	program := `MOV R0, #250
ADD R1, R0, #250
SUB R2, R1, #255
MVN R3, #170
LSL R4, R0, #3
STR R1, 0
STR R2, 1
STR R3, 2
STR R4, 3
HALT`
	m := aqaasm.New()
	mustRun(t, m, program)
	for addr := 0; addr <= 3; addr++ {
		v := memory(t, m, addr)
		if v < 0 || v >= 256 {
			t.Fatalf("memory[%d] = %d, outside [0, 256)", addr, v)
		}
	}
}

func TestBlankAndLabelLinesAreSkipped(t *testing.T) {
	m := aqaasm.New()
	mustRun(t, m, "\n\nstart:\n\nMOV R0, #9\nSTR R0, 0\n\nHALT")
	if got := memory(t, m, 0); got != 9 {
		t.Fatalf("memory[0] = %d, want 9", got)
	}
}
