// Copyright 2017-2019 ETH Zurich and University of Bologna.
//
// Copyright and related rights are licensed under the Solderpad Hardware
// License, Version 0.51 (the "License"); you may not use this file except in
// compliance with the License.  You may obtain a copy of the License at
// http://solderpad.org/licenses/SHL-0.51. Unless required by applicable law
// or agreed to in writing, software, hardware and materials distributed under
// this License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
// CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// Michael Schaffner (schaffner@iis.ee.ethz.ch)
// Fabian Schuiki (fschuiki@iis.ee.ethz.ch)

// monitor.go - Interactive machine monitor for the NTX emulator

/*
A small monitor in the spirit of classic machine monitors: peek and poke the
scratchpad, inspect and write the accelerator registers, load job and memory
dumps, and issue staged jobs. The command interpreter is plain text in/out so
it can be driven from tests; the raw-terminal host lives in monitor_host.go.
*/

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// NTXMonitor interprets monitor commands against one engine instance.
type NTXMonitor struct {
	bus *TCDMBus
	ntx *NTXEngine
	rf  *NTXRegisterFile
}

// NewNTXMonitor creates a monitor over the given machine.
func NewNTXMonitor(bus *TCDMBus, ntx *NTXEngine, rf *NTXRegisterFile) *NTXMonitor {
	return &NTXMonitor{bus: bus, ntx: ntx, rf: rf}
}

const monitorHelp = `commands:
  regs              show accelerator state
  peek ADDR [N]     read N words from the scratchpad (default 1)
  poke ADDR VAL     write a word to the scratchpad
  rr REG            read a register by word offset
  wr REG VAL        write a register by word offset (wr 2 CMD issues)
  job FILE          load a job dump into the staging area
  mem FILE          load a memory dump into the scratchpad
  dump FILE         write the scratchpad to a memory dump
  issue             issue the staged command
  irqclr            clear pending interrupts
  reset             soft reset (clears a halt)
  quit              leave the monitor`

// parseNum accepts decimal and 0x-prefixed hex.
func parseNum(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

// Execute runs one command line and returns its output and whether the
// monitor session should end.
func (m *NTXMonitor) Execute(line string) (string, bool) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", false
	}

	switch args[0] {
	case "help", "?":
		return monitorHelp, false

	case "quit", "q", "exit":
		return "", true

	case "regs":
		return m.formatRegs(), false

	case "peek":
		if len(args) < 2 {
			return "usage: peek ADDR [N]", false
		}
		addr, err := parseNum(args[1])
		if err != nil {
			return "bad address: " + args[1], false
		}
		n := uint32(1)
		if len(args) > 2 {
			if n, err = parseNum(args[2]); err != nil || n == 0 {
				return "bad count: " + args[2], false
			}
		}
		var sb strings.Builder
		for k := uint32(0); k < n; k++ {
			a := addr + k*4
			w := m.bus.Read32(a)
			fmt.Fprintf(&sb, "0x%08x 0x%08x  % e\n", a, w, fp32ToFloat(w))
		}
		return strings.TrimRight(sb.String(), "\n"), false

	case "poke":
		if len(args) != 3 {
			return "usage: poke ADDR VAL", false
		}
		addr, err1 := parseNum(args[1])
		val, err2 := parseNum(args[2])
		if err1 != nil || err2 != nil {
			return "bad operand", false
		}
		m.bus.Write32(addr, val)
		return "", false

	case "rr":
		if len(args) != 2 {
			return "usage: rr REG", false
		}
		reg, err := parseNum(args[1])
		if err != nil || reg >= NTX_NUM_REGS {
			return "bad register offset", false
		}
		return fmt.Sprintf("reg[0x%02x] = 0x%08x", reg, m.rf.ReadReg(reg)), false

	case "wr":
		if len(args) != 3 {
			return "usage: wr REG VAL", false
		}
		reg, err1 := parseNum(args[1])
		val, err2 := parseNum(args[2])
		if err1 != nil || err2 != nil || reg >= NTX_NUM_REGS {
			return "bad operand", false
		}
		m.rf.WriteReg(reg, val)
		return "", false

	case "job":
		if len(args) != 2 {
			return "usage: job FILE", false
		}
		name, err := m.ntx.ReadJobDump(args[1], 0)
		if err != nil {
			return err.Error(), false
		}
		return "staged job: " + name, false

	case "mem":
		if len(args) != 2 {
			return "usage: mem FILE", false
		}
		if err := ReadMemDump(args[1], m.bus); err != nil {
			return err.Error(), false
		}
		return "scratchpad loaded", false

	case "dump":
		if len(args) != 2 {
			return "usage: dump FILE", false
		}
		if err := WriteMemDump(args[1], m.bus); err != nil {
			return err.Error(), false
		}
		return "scratchpad written", false

	case "issue":
		if err := m.ntx.IssueCmd(); err != nil {
			return err.Error(), false
		}
		return "done", false

	case "irqclr":
		m.ntx.ClrIrq()
		return "", false

	case "reset":
		m.ntx.SoftRst()
		return "", false
	}

	return "unknown command (try help)", false
}

func (m *NTXMonitor) formatRegs() string {
	ntx := m.ntx
	var sb strings.Builder

	fmt.Fprintf(&sb, "stat 0x%02x  cmd 0x%08x  irq %v\n", ntx.Stat(), ntx.CmdWord(), ntx.HasIrq())
	fmt.Fprintf(&sb, "op %s  initSel %d  aux %d  polarity %v\n",
		ntxOpTable[ntx.opCode%N_NTX_OPCODES].name, ntx.initSel, ntx.auxFunc, ntx.polarity)
	fmt.Fprintf(&sb, "levels init %d inner %d outer %d\n", ntx.initLevel, ntx.innerLevel, ntx.outerLevel)
	fmt.Fprintf(&sb, "bounds %v\n", ntx.loopBound)
	for a := 0; a < N_AGUS; a++ {
		fmt.Fprintf(&sb, "agu%d base 0x%05x strides %v\n", a, ntx.aguOff[a], ntx.aguStride[a])
	}
	fmt.Fprintf(&sb, "alu 0x%08x (% e)  cnt %d  idx %d",
		ntx.aluState, fp32ToFloat(ntx.aluState), ntx.cntState, ntx.idxState)
	return sb.String()
}
