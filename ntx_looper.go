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

// ntx_looper.go - Recursive hardware loop nest driver

/*
The NTX walks a nest of up to five hardware loops. Each recursion frame
handles one level:

    1. optional AGU bounds assertions
    2. opcode init phase when the frame is at the init level
    3. the leaf execute phase at level 0, or one recursion per iteration
    4. opcode store phase when the frame is at the inner (writeback) level
    5. AGU advance by this level's stride, skipped on the last iteration
       of the parent loop

The entry frame is (outerLevel, isLast=true), so the outermost level never
post-advances: strides describe intra-body steps only. init frames always
enclose store frames (innerLevel <= initLevel), which is what allows several
output rows to be reduced out of a single accumulator initialization.
*/

package main

import "fmt"

// ntxExecState carries opcode-transient state between the execute and store
// phases of one inner frame: the test outcome and operand addresses captured
// at execute time. It is scratch of the running job, not of the descriptor.
type ntxExecState struct {
	tst bool
	opA uint32 // byte address captured by MASK/MASKMAC execute
	opB uint32 // byte address captured by THTST execute
}

// ntxOp is one entry of the opcode phase table.
type ntxOp struct {
	name    string
	init    func(ntx *NTXEngine, st *ntxExecState)
	execute func(ntx *NTXEngine, st *ntxExecState)
	store   func(ntx *NTXEngine, st *ntxExecState)
}

// runLoops drives the staged loop nest with the given opcode phases.
func (ntx *NTXEngine) runLoops(op *ntxOp) {
	var st ntxExecState
	ntx.loopFrame(op, &st, ntx.outerLevel, true)
}

func (ntx *NTXEngine) loopFrame(op *ntxOp, st *ntxExecState, level uint8, isLast bool) {
	// detect malicious AGU configurations before any dereference
	if ntx.checkTcdmAddrs {
		for o := 0; o < N_AGUS; o++ {
			if ntx.agu[o] < ntx.tcdmLow || ntx.agu[o] > ntx.tcdmHigh {
				panic(fmt.Sprintf("ntx: AGU%d address 0x%08X outside TCDM [0x%08X, 0x%08X]",
					o, ntx.agu[o], ntx.tcdmLow, ntx.tcdmHigh))
			}
		}
	}

	if ntxDebugLevel > 0 {
		for k := level; k < ntx.outerLevel; k++ {
			fmt.Print("---")
		}
		fmt.Printf("level %d\n", level)
	}

	if ntx.initLevel == level {
		op.init(ntx, st)
	}

	// the command body only runs in the innermost loop
	if level == 0 {
		op.execute(ntx, st)
	} else {
		// inclusive bounds: loopBound holds count minus one
		for k := uint32(0); k <= ntx.loopBound[level-1]; k++ {
			ntx.loopFrame(op, st, level-1, k == ntx.loopBound[level-1])
		}
	}

	if ntx.innerLevel == level {
		op.store(ntx, st)
	}

	// AGU update
	if level < N_HW_LOOPS && !isLast {
		if ntxDebugLevel > 0 {
			fmt.Printf("level %d AGU update\n", level)
		}
		for o := 0; o < N_AGUS; o++ {
			ntx.agu[o] += uint32(ntx.aguStride[o][level])
		}
	}
}
