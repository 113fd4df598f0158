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

// ntx_ops.go - The nine NTX opcode state machines

/*
Each opcode is a triple of phases over the engine's execution registers:

    init     runs on entering the init-level frame
    execute  runs once per innermost iteration
    store    runs on leaving the inner-level frame

All arithmetic goes through PcsMac so reductions stay exact; comparisons are
performed on the reinterpreted IEEE float values, which matters for negative
zero and the ordering of negatives. The table is a closed set: the command
decoder rejects opcodes outside it before the loop driver ever runs.
*/

package main

// ntxOpTable is the static opcode registry, keyed on the opcode index.
var ntxOpTable = [N_NTX_OPCODES]ntxOp{
	NTX_MAC_OP:     {name: "NTX_MAC", init: macInit, execute: macExecute, store: macStore},
	NTX_VADDSUB_OP: {name: "NTX_VADDSUB", init: vaddsubInit, execute: vaddsubExecute, store: macStore},
	NTX_VMULT_OP:   {name: "NTX_VMULT", init: vmultInit, execute: vmultExecute, store: macStore},
	NTX_OUTERP_OP:  {name: "NTX_OUTERP", init: outerpInit, execute: outerpExecute, store: macStore},
	NTX_MAXMIN_OP:  {name: "NTX_MAXMIN", init: maxminInit, execute: maxminExecute, store: maxminStore},
	NTX_THTST_OP:   {name: "NTX_THTST", init: thtstInit, execute: thtstExecute, store: thtstStore},
	NTX_MASK_OP:    {name: "NTX_MASK", init: maskInit, execute: maskExecute, store: maskStore},
	NTX_MASKMAC_OP: {name: "NTX_MASKMAC", init: maskmacInit, execute: maskmacExecute, store: maskmacStore},
	NTX_COPY_OP:    {name: "NTX_COPY", init: copyInit, execute: copyExecute, store: copyStore},
}

// =============================================================================
// NTX_MAC - reduction multiply-accumulate
// =============================================================================

func macInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.accuState.Clear()
	} else {
		val := ntx.readAt(ntx.agu[ntx.initSel])
		PcsMac(val, FP32_ONE_VAL, true, false, false, &ntx.accuState)
	}
}

func macExecute(ntx *NTXEngine, st *ntxExecState) {
	PcsMac(ntx.readAgu(0), ntx.readAgu(1), false, ntx.polarity, false, &ntx.accuState)
}

// macStore normalizes the accumulator into *AGU2. Shared by MAC, VADDSUB,
// VMULT and OUTERP, all of which use the aux function as a ReLU enable.
func macStore(ntx *NTXEngine, st *ntxExecState) {
	res := PcsMac(FP32_ZERO_VAL, FP32_ZERO_VAL, false, false, true, &ntx.accuState)

	// apply ReLU if required
	if ntx.auxFunc != 0 && fp32Sign(res) {
		res = FP32_ZERO_VAL
	}

	ntx.writeAgu(2, res)
}

// =============================================================================
// NTX_VADDSUB - vector add/subtract without multiply
// =============================================================================

func vaddsubInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.accuState.Clear()
	} else {
		// unlike MAC, the init load honors polarity (subtractive init)
		val := ntx.readAt(ntx.agu[ntx.initSel])
		PcsMac(val, FP32_ONE_VAL, true, ntx.polarity, false, &ntx.accuState)
	}
}

func vaddsubExecute(ntx *NTXEngine, st *ntxExecState) {
	PcsMac(ntx.readAgu(0), FP32_ONE_VAL, false, false, false, &ntx.accuState)
}

// =============================================================================
// NTX_VMULT - elementwise multiply, no reduction
// =============================================================================

func vmultInit(ntx *NTXEngine, st *ntxExecState) {
	// no init
}

func vmultExecute(ntx *NTXEngine, st *ntxExecState) {
	PcsMac(ntx.readAgu(0), ntx.readAgu(1), true, ntx.polarity, false, &ntx.accuState)
}

// =============================================================================
// NTX_OUTERP - outer product against a fixed scalar
// =============================================================================

func outerpInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.aluState = FP32_ZERO_VAL
	} else {
		ntx.aluState = ntx.readAt(ntx.agu[ntx.initSel])
	}
	ntx.accuState.Clear()
}

func outerpExecute(ntx *NTXEngine, st *ntxExecState) {
	PcsMac(ntx.readAgu(0), ntx.aluState, true, ntx.polarity, false, &ntx.accuState)
}

// =============================================================================
// NTX_MAXMIN - max/min with optional argmax/argmin
// =============================================================================

func maxminInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.aluState = FP32_ZERO_VAL
	} else {
		ntx.aluState = ntx.readAt(ntx.agu[ntx.initSel])
	}
	ntx.cntState = 0
}

func maxminExecute(ntx *NTXEngine, st *ntxExecState) {
	opB := ntx.readAgu(1)

	// negative polarity means MIN
	tst := (fp32ToFloat(ntx.aluState) > fp32ToFloat(opB)) != !ntx.polarity

	if tst {
		ntx.aluState = opB
		ntx.idxState = ntx.cntState
	}

	ntx.cntState++
}

func maxminStore(ntx *NTXEngine, st *ntxExecState) {
	if ntx.auxFunc != 0 {
		ntx.writeAgu(2, ntx.idxState)
	} else {
		ntx.writeAgu(2, ntx.aluState)
	}
}

// =============================================================================
// NTX_THTST - threshold / test
// =============================================================================

func thtstInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.aluState = FP32_ZERO_VAL
	} else {
		ntx.aluState = ntx.readAt(ntx.agu[ntx.initSel])
	}
}

func thtstExecute(ntx *NTXEngine, st *ntxExecState) {
	st.opB = ntx.agu[1]
	opB := ntx.readAt(st.opB)

	// only the low two bits select the comparison; bit 2 is the binary
	// output enable consumed by the store phase
	switch ntx.auxFunc & 0x3 {
	case NTX_THTST_AUX_CMP_EQ:
		st.tst = fp32ToFloat(ntx.aluState) == fp32ToFloat(opB)
		st.tst = st.tst != ntx.polarity
	case NTX_THTST_AUX_CMP_LT:
		st.tst = fp32ToFloat(ntx.aluState) > fp32ToFloat(opB)
		st.tst = st.tst != ntx.polarity
	case NTX_THTST_AUX_CMP_LE:
		st.tst = fp32ToFloat(ntx.aluState) >= fp32ToFloat(opB)
		st.tst = st.tst != ntx.polarity
	default:
		st.tst = false
	}
}

func thtstStore(ntx *NTXEngine, st *ntxExecState) {
	if ntx.auxFunc&NTX_THTST_AUX_BIN_OUT != 0 {
		// binary output
		if st.tst {
			ntx.writeAgu(2, FP32_ONE_VAL)
		} else {
			ntx.writeAgu(2, FP32_ZERO_VAL)
		}
	} else {
		// thresholding output
		if st.tst {
			ntx.writeAgu(2, ntx.readAt(st.opB))
		} else {
			ntx.writeAgu(2, ntx.aluState)
		}
	}
}

// =============================================================================
// NTX_MASK - conditional copy gated by a comparison or the counter
// =============================================================================

func maskInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.aluState = FP32_ZERO_VAL
	} else {
		ntx.aluState = ntx.readAt(ntx.agu[ntx.initSel])
	}
	ntx.cntState = 0
}

// maskCompare decodes the full 3-bit aux function: the THTST comparison
// modes plus the counter compare used for one-hot selection. The counter
// compare is on the raw register contents, not the float interpretation.
// Undefined selectors yield false without polarity inversion.
func maskCompare(ntx *NTXEngine, opB uint32) bool {
	var tst bool
	switch ntx.auxFunc {
	case NTX_MASK_AUX_CMP_EQ:
		tst = fp32ToFloat(ntx.aluState) == fp32ToFloat(opB)
	case NTX_MASK_AUX_CMP_LT:
		tst = fp32ToFloat(ntx.aluState) > fp32ToFloat(opB)
	case NTX_MASK_AUX_CMP_LE:
		tst = fp32ToFloat(ntx.aluState) >= fp32ToFloat(opB)
	case NTX_MASK_AUX_CMP_CNT:
		tst = ntx.cntState == ntx.aluState
	default:
		return false
	}
	return tst != ntx.polarity
}

func maskExecute(ntx *NTXEngine, st *ntxExecState) {
	st.opA = ntx.agu[0]
	opB := ntx.readAgu(1)

	st.tst = maskCompare(ntx, opB)
	ntx.cntState++
}

func maskStore(ntx *NTXEngine, st *ntxExecState) {
	if st.tst {
		ntx.writeAgu(2, ntx.readAt(st.opA))
	} else {
		ntx.writeAgu(2, FP32_ZERO_VAL)
	}
}

// =============================================================================
// NTX_MASKMAC - masked scalar accumulate into a running memory word
// =============================================================================

func maskmacInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.initSel >= NTX_INIT_WITH_ZERO {
		ntx.aluState = FP32_ZERO_VAL
	} else {
		ntx.aluState = ntx.readAt(ntx.agu[1])
	}

	// the accumulator always starts from the word under AGU0
	PcsMac(ntx.readAgu(0), FP32_ONE_VAL, true, false, false, &ntx.accuState)

	ntx.cntState = 0
}

func maskmacExecute(ntx *NTXEngine, st *ntxExecState) {
	// AGU2 is the read-modify-write vector
	st.opA = ntx.agu[2]

	opBAddr := st.opA
	if ntx.auxFunc&NTX_MASK_AUX_CMP_CNT == 0 {
		opBAddr = ntx.agu[1]
	}

	st.tst = maskCompare(ntx, ntx.readAt(opBAddr))
	ntx.cntState++
}

func maskmacStore(ntx *NTXEngine, st *ntxExecState) {
	// conditionally accumulate and write back; a failed test leaves the
	// result word untouched
	if st.tst {
		res := PcsMac(ntx.readAt(st.opA), FP32_ONE_VAL, false, false, true, &ntx.accuState)
		ntx.writeAgu(2, res)
	}
}

// =============================================================================
// NTX_COPY - replicate or bulk copy
// =============================================================================

func copyInit(ntx *NTXEngine, st *ntxExecState) {
	if ntx.auxFunc&NTX_COPY_AUX_VECT == 0 {
		// replicate mode deposits the init value
		if ntx.initSel >= NTX_INIT_WITH_ZERO {
			ntx.aluState = FP32_ZERO_VAL
		} else {
			ntx.aluState = ntx.readAt(ntx.agu[ntx.initSel])
		}
	}
}

func copyExecute(ntx *NTXEngine, st *ntxExecState) {
	if ntx.auxFunc&NTX_COPY_AUX_VECT != 0 {
		ntx.aluState = ntx.readAgu(0)
	}
}

func copyStore(ntx *NTXEngine, st *ntxExecState) {
	ntx.writeAgu(2, ntx.aluState)
}
