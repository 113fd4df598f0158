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

package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestMonitor() (*TCDMBus, *NTXEngine, *NTXMonitor) {
	bus := NewTCDMBus()
	ntx := NewNTXEngine(bus)
	rf := NewNTXRegisterFile(bus, ntx, NTX_BASE_ADDR)
	return bus, ntx, NewNTXMonitor(bus, ntx, rf)
}

func TestMonitorPeekPoke(t *testing.T) {
	_, _, mon := newTestMonitor()

	if out, quit := mon.Execute("poke 0x10 0xCAFEBABE"); out != "" || quit {
		t.Fatalf("poke failed: %q", out)
	}
	out, _ := mon.Execute("peek 0x10")
	if !strings.Contains(out, "0xcafebabe") {
		t.Errorf("Expected peek to show the poked value, got %q", out)
	}

	out, _ = mon.Execute("peek 0x10 3")
	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Errorf("Expected 3 lines from peek with count, got %q", out)
	}
}

func TestMonitorRegisterAccess(t *testing.T) {
	_, ntx, mon := newTestMonitor()

	mon.Execute("wr 4 9") // LOOP0
	if ntx.loopBound[0] != 9 {
		t.Errorf("Expected wr to reach the loop register, got %d", ntx.loopBound[0])
	}

	out, _ := mon.Execute("rr 0")
	if !strings.Contains(out, "0x00000007") {
		t.Errorf("Expected idle STAT readback, got %q", out)
	}
}

func TestMonitorIssueAndRegs(t *testing.T) {
	bus, ntx, mon := newTestMonitor()

	putF(bus, 100, 2.0, 3.0)
	ntx.StageLoopNest(1, 1, 1, NTXLoopBounds{2}, NTXStrides{{1}, {1}, {0}})
	ntx.StageAguOffs(100<<2, 100<<2, 0)
	ntx.StageCmd(NTX_MAC_OP, NTX_INIT_WITH_ZERO, 0, NTX_SET_NO_IRQ, false)

	if out, _ := mon.Execute("issue"); out != "done" {
		t.Fatalf("issue failed: %q", out)
	}
	// 2*2 + 3*3
	if got := getF(bus, 0); got != 13.0 {
		t.Errorf("Expected 13.0, got %v", got)
	}

	out, _ := mon.Execute("regs")
	if !strings.Contains(out, "NTX_MAC") {
		t.Errorf("Expected regs output to name the opcode, got %q", out)
	}
}

func TestMonitorJobAndMemFiles(t *testing.T) {
	bus, ntx, mon := newTestMonitor()
	dir := t.TempDir()

	bus.Write32(0, 0x1234)
	memPath := filepath.Join(dir, "mem.txt")
	if out, _ := mon.Execute("dump " + memPath); !strings.Contains(out, "written") {
		t.Fatalf("dump failed: %q", out)
	}

	ntx.StageLoopNest(1, 1, 1, NTXLoopBounds{4}, NTXStrides{{1}, {1}, {0}})
	ntx.StageCmd(NTX_MAC_OP, NTX_INIT_WITH_ZERO, 0, NTX_SET_NO_IRQ, false)
	jobPath := filepath.Join(dir, "job.txt")
	if err := ntx.WriteJobDump(jobPath, "monitor_test_job", 0); err != nil {
		t.Fatal(err)
	}

	// load both back through the monitor
	bus.Write32(0, 0)
	if out, _ := mon.Execute("mem " + memPath); !strings.Contains(out, "loaded") {
		t.Fatalf("mem failed: %q", out)
	}
	if got := bus.Read32(0); got != 0x1234 {
		t.Errorf("Expected restored word, got %08X", got)
	}
	out, _ := mon.Execute("job " + jobPath)
	if !strings.Contains(out, "monitor_test_job") {
		t.Errorf("Expected staged job name, got %q", out)
	}
}

func TestMonitorQuitAndUnknown(t *testing.T) {
	_, _, mon := newTestMonitor()

	if _, quit := mon.Execute("quit"); !quit {
		t.Error("Expected quit to end the session")
	}
	if out, quit := mon.Execute("frobnicate"); quit || !strings.Contains(out, "unknown") {
		t.Errorf("Expected unknown command message, got %q", out)
	}
	if out, quit := mon.Execute("   "); out != "" || quit {
		t.Errorf("Expected empty line to be a no-op, got %q", out)
	}
}
