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

// ntx_scenarios.go - Deterministic test vector generation for the RTL testbench

/*
Replicates the accelerator verification job set: for every scenario the
scratchpad is filled with a poison pattern, operands are generated from a
seeded RNG, and three files are emitted per job - the initial memory image
(iniNNNN.txt), the staged job (jobNNNN.txt) and the expected memory image
after running the functional model (expNNNN.txt). The same seed always
produces the same files, so the output is suitable for golden comparisons.

Most groups sweep their low variant bits through initSel, ReLU, polarity or
the aux comparison modes, which is how the RTL regression covers the command
word space without hand-written per-variant jobs.
*/

package main

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
)

const tcdmPoison = 0x55555555

// TestDataGen drives one engine through the scenario set and numbers the
// emitted dump files.
type TestDataGen struct {
	bus    *TCDMBus
	ntx    *NTXEngine
	rng    *rand.Rand
	outDir string
	cnt    int
}

// NewTestDataGen creates a generator writing into outDir. The same seed
// reproduces the same job files bit for bit.
func NewTestDataGen(outDir string, seed int64) *TestDataGen {
	bus := NewTCDMBus()
	ntx := NewNTXEngine(bus)
	ntx.SetTCDMBaseCheck(0, TCDM_SIZE_BYTES-1)
	return &TestDataGen{
		bus:    bus,
		ntx:    ntx,
		rng:    rand.New(rand.NewSource(seed)),
		outDir: outDir,
	}
}

// randFp32 draws from the uniform distribution on (-1, 1).
func (g *TestDataGen) randFp32() uint32 {
	return floatToFp32(float32(g.rng.Float64()*2 - 1))
}

// setWord writes a 32-bit value at a word index.
func (g *TestDataGen) setWord(wordIdx uint32, value uint32) {
	g.bus.Write32(wordIdx<<2, value)
}

// dumpAndRun emits the ini/job dumps for the staged job, runs it, and emits
// the exp dump.
func (g *TestDataGen) dumpAndRun(testName string) error {
	ini := filepath.Join(g.outDir, fmt.Sprintf("ini%04d.txt", g.cnt))
	if err := WriteMemDump(ini, g.bus); err != nil {
		return err
	}

	job := filepath.Join(g.outDir, fmt.Sprintf("job%04d.txt", g.cnt))
	if err := g.ntx.WriteJobDump(job, testName, 0); err != nil {
		return err
	}

	if err := g.ntx.IssueCmd(); err != nil {
		return fmt.Errorf("ntx: job %q: %w", testName, err)
	}

	exp := filepath.Join(g.outDir, fmt.Sprintf("exp%04d.txt", g.cnt))
	if err := WriteMemDump(exp, g.bus); err != nil {
		return err
	}

	g.cnt++
	return nil
}

// Run generates the full scenario set.
func (g *TestDataGen) Run() error {
	groups := []func() error{
		g.gen1DMac,
		g.gen2DMac,
		g.gen3DMac,
		g.genVAddSub,
		g.genVMult,
		g.genOuterP,
		g.genMaxMin,
		g.genThTst,
		g.genMask,
		g.genMaskCnt,
		g.genMaskMac,
		g.genMaskMacCnt,
		g.genCopyRepl,
		g.genCopyVect,
	}
	for _, gen := range groups {
		if err := gen(); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of jobs generated so far.
func (g *TestDataGen) Count() int {
	return g.cnt
}

// 1D MAC reduction, sweeping init source, ReLU and polarity.
func (g *TestDataGen) gen1DMac() error {
	for k := 0; k < 8; k++ {
		const vecLen = 100

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(3*vecLen), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}
		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(1, 1, 1,
			NTXLoopBounds{vecLen},
			NTXStrides{
				{1, 0, 0, 0, 0},
				{1, 0, 0, 0, 0},
				{0, 0, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MAC_OP,
			uint8(NTX_INIT_WITH_AGU2+(k&1)),
			uint8((k>>1)&1),
			NTX_SET_CMD_IRQ,
			(k>>2)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("1D_reduction_NTX_MAC_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// 2D MAC reduction over a 10x10 tile.
func (g *TestDataGen) gen2DMac() error {
	for k := 0; k < 8; k++ {
		const vecLen = 10

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(10), uint32(2*vecLen*vecLen+10), uint32(0)

		for n := uint32(0); n < vecLen*vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}
		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(2, 2, 2,
			NTXLoopBounds{vecLen, vecLen},
			NTXStrides{
				{1, vecLen, 0, 0, 0},
				{1, vecLen, 0, 0, 0},
				{0, 0, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MAC_OP,
			uint8(NTX_INIT_WITH_AGU2+(k&1)),
			uint8((k>>1)&1),
			NTX_SET_CMD_IRQ,
			(k>>2)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("2D_reduction_NTX_MAC_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// 3D reduction with 2D output strides: two 20x20 tiles with 10 channels
// reduce into a 10x10 output, exercising all five hardware loops.
func (g *TestDataGen) gen3DMac() error {
	for k := 0; k < 8; k++ {
		const vecLen = 10 * 20 * 20

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(2*vecLen), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}
		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(3, 3, 5,
			NTXLoopBounds{10, 10, 10, 10, 10},
			NTXStrides{
				{1, 20, 20 * 20, 1, 20},
				{1, 20, 20 * 20, 1, 20},
				{0, 0, 0, 1, 10}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MAC_OP,
			uint8(NTX_INIT_WITH_ZERO-(k&1)),
			uint8((k>>1)&1),
			NTX_SET_CMD_IRQ,
			(k>>2)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("3D_reduction_2D_stride_NTX_MAC_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// 1D vector add/subtract with per-element writeback.
func (g *TestDataGen) genVAddSub() error {
	for k := 0; k < 4; k++ {
		const vecLen = 100

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(3*vecLen), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}
		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(0, 0, 1,
			NTXLoopBounds{vecLen},
			NTXStrides{
				{1, 0, 0, 0, 0},
				{1, 0, 0, 0, 0},
				{1, 0, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_VADDSUB_OP,
			NTX_INIT_WITH_AGU1,
			uint8(k&1),
			NTX_SET_CMD_IRQ,
			(k>>1)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("1D_vector_NTX_VADDSUB_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// 1D elementwise multiply.
func (g *TestDataGen) genVMult() error {
	for k := 0; k < 4; k++ {
		const vecLen = 100

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(3*vecLen), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}
		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(0, 0, 1,
			NTXLoopBounds{vecLen},
			NTXStrides{
				{1, 0, 0, 0, 0},
				{1, 0, 0, 0, 0},
				{1, 0, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_VMULT_OP,
			NTX_INIT_WITH_AGU1,
			uint8(k&1),
			NTX_SET_CMD_IRQ,
			(k>>1)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("1D_vector_NTX_VMULT_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// 20x20 outer product: one init per output row fixes the scalar from opB.
func (g *TestDataGen) genOuterP() error {
	for k := 0; k < 4; k++ {
		const vecLen = 20

		g.bus.Fill(tcdmPoison)
		opA := uint32(vecLen*vecLen + 10)
		opB := uint32(2*vecLen*vecLen + 10)
		res := uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}

		g.ntx.StageLoopNest(1, 0, 2,
			NTXLoopBounds{vecLen, vecLen},
			NTXStrides{
				{1, 0, 0, 0, 0},
				{0, 1, 0, 0, 0},
				{1, vecLen, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_OUTERP_OP,
			NTX_INIT_WITH_AGU1,
			uint8((k>>1)&1),
			NTX_SET_CMD_IRQ,
			k&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("outer_product_NTX_OUTERP_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// 1D max/min reduction over the AGU1 stream.
func (g *TestDataGen) genMaxMin() error {
	for k := 0; k < 4; k++ {
		const vecLen = 100

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(3*vecLen), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
			g.setWord(opB+n, g.randFp32())
		}
		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(1, 1, 1,
			NTXLoopBounds{vecLen},
			NTXStrides{
				{0, 0, 0, 0, 0},
				{1, 0, 0, 0, 0}, // maxmin works on AGU1
				{0, 0, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MAXMIN_OP,
			NTX_INIT_WITH_AGU1,
			uint8(k&1),
			NTX_SET_CMD_IRQ,
			(k>>1)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("1D_reduction_NTX_MAXMIN_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Thresholding over 10 vectors of 100 values, sweeping all aux modes,
// polarity and the init source. Equality hits are planted explicitly.
func (g *TestDataGen) genThTst() error {
	for k := 0; k < 32; k++ {
		const vecLen = 100 * 10

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(2*vecLen), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opB+n, g.randFp32())
		}
		for n := uint32(0); n < 10; n++ {
			g.setWord(opA+n, g.randFp32())
		}

		// plant exact matches for the equality modes
		g.setWord(opB+2, floatToFp32(0.0))
		g.setWord(opA+1, g.bus.Read32((opB+15)<<2))

		g.setWord(res, g.randFp32())

		g.ntx.StageLoopNest(1, 0, 2,
			NTXLoopBounds{100, 10},
			NTXStrides{
				{0, 1, 0, 0, 0},
				{1, 100, 0, 0, 0},
				{1, 100, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_THTST_OP,
			uint8(NTX_INIT_WITH_ZERO-3*(k&1)),
			uint8((k>>1)&7),
			NTX_SET_CMD_IRQ,
			(k>>4)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("vector_mask_NTX_THTST_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Masking against a zero threshold, sweeping the comparison modes.
func (g *TestDataGen) genMask() error {
	for k := 0; k < 8; k++ {
		const vecLen = 100 * 10

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(2*vecLen+50), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opB+n, g.randFp32())
			g.setWord(opA+n, g.randFp32())
		}

		g.ntx.StageLoopNest(2, 0, 2,
			NTXLoopBounds{100, 10},
			NTXStrides{
				{1, 100, 0, 0, 0},
				{1, 100, 0, 0, 0},
				{1, 100, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MASK_OP,
			NTX_INIT_WITH_ZERO,
			uint8(k&3),
			NTX_SET_CMD_IRQ,
			(k>>2)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("vector_mask_NTX_MASK_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Masking with the internal counter: one-hot selection against raw integer
// indices loaded into the ALU register.
func (g *TestDataGen) genMaskCnt() error {
	for k := 0; k < 2; k++ {
		const vecLen = 100 * 10

		g.bus.Fill(tcdmPoison)
		opA, opB, res := uint32(vecLen), uint32(2*vecLen+50), uint32(0)

		for n := uint32(0); n < vecLen; n++ {
			g.setWord(opA+n, g.randFp32())
		}
		// raw integer select indices, not float encoded
		for n := uint32(0); n < 10; n++ {
			idx := math.Max(math.Round(50.0*(g.rng.Float64()*2-1)+49.0), 0)
			g.setWord(opB+n, uint32(idx))
		}

		g.ntx.StageLoopNest(1, 0, 2,
			NTXLoopBounds{100, 10},
			NTXStrides{
				{1, 100, 0, 0, 0},
				{0, 1, 0, 0, 0},
				{1, 100, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MASK_OP,
			NTX_INIT_WITH_AGU1,
			NTX_MASK_AUX_CMP_CNT,
			NTX_SET_CMD_IRQ,
			k&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("internal_counter_NTX_MASK_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Masked accumulate with a comparison gate over the AGU1 stream.
func (g *TestDataGen) genMaskMac() error {
	for k := 0; k < 8; k++ {
		const vecLen1 = 100
		const vecLen2 = 10

		g.bus.Fill(tcdmPoison)
		opA := uint32(vecLen1*vecLen2 + 10)
		opB := uint32(vecLen1*vecLen2 + vecLen2 + 20)
		res := uint32(0)

		for n := uint32(0); n < vecLen1*vecLen2; n++ {
			g.setWord(res+n, g.randFp32())
		}
		for n := uint32(0); n < vecLen2; n++ {
			g.setWord(opA+n, g.randFp32())
		}
		for n := uint32(0); n < vecLen1*vecLen2; n++ {
			var gate float32
			if g.rng.Float64()*2-1 >= 0 {
				gate = 1.0
			}
			g.setWord(opB+n, floatToFp32(gate))
		}

		g.ntx.StageLoopNest(1, 0, 2,
			NTXLoopBounds{vecLen1, vecLen2},
			NTXStrides{
				{0, 1, 0, 0, 0},
				{1, vecLen1, 0, 0, 0},
				{1, vecLen1, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MASKMAC_OP,
			NTX_INIT_WITH_ZERO,
			uint8(k&3),
			NTX_SET_CMD_IRQ,
			(k>>2)&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("vector_mask_NTX_MASKMAC_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Masked accumulate gated by the internal counter: adds an offset from opA
// at the argmax position recorded in opB.
func (g *TestDataGen) genMaskMacCnt() error {
	for k := 0; k < 2; k++ {
		const vecLen1 = 100
		const vecLen2 = 10

		g.bus.Fill(tcdmPoison)
		opA := uint32(vecLen1*vecLen2 + 10)
		opB := uint32(vecLen1*vecLen2 + vecLen2 + 20)
		res := uint32(0)

		for n := uint32(0); n < vecLen1*vecLen2; n++ {
			g.setWord(res+n, g.randFp32())
		}
		for n := uint32(0); n < vecLen2; n++ {
			g.setWord(opA+n, g.randFp32())
		}
		// raw integer argmax positions
		for n := uint32(0); n < vecLen2; n++ {
			idx := math.Max(math.Round(vecLen1/2*(g.rng.Float64()*2-1)+vecLen1/2-1), 0)
			g.setWord(opB+n, uint32(idx))
		}

		g.ntx.StageLoopNest(1, 0, 2,
			NTXLoopBounds{vecLen1, vecLen2},
			NTXStrides{
				{0, 1, 0, 0, 0},
				{0, 1, 0, 0, 0},
				{1, vecLen1, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, opB<<2, res<<2)
		g.ntx.StageCmd(NTX_MASKMAC_OP,
			NTX_INIT_WITH_AGU1,
			NTX_MASK_AUX_CMP_CNT,
			NTX_SET_CMD_IRQ,
			k&1 != 0)

		if err := g.dumpAndRun(fmt.Sprintf("internal_counter_NTX_MASKMAC_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Replicate: deposit the init value (zero or the first opA word) over a
// 10x100 output.
func (g *TestDataGen) genCopyRepl() error {
	for k := 0; k < 2; k++ {
		const vecLen1 = 100
		const vecLen2 = 10

		g.bus.Fill(tcdmPoison)
		opA := uint32(vecLen1*vecLen2 + 10)
		res := uint32(0)

		for n := uint32(0); n < vecLen1; n++ {
			g.setWord(opA+n, g.randFp32())
		}

		initSel := uint8(NTX_INIT_WITH_ZERO)
		if k != 0 {
			initSel = NTX_INIT_WITH_AGU0
		}

		g.ntx.StageLoopNest(1, 0, 2,
			NTXLoopBounds{vecLen1, vecLen2},
			NTXStrides{
				{0, 1, 0, 0, 0},
				{0, 0, 0, 0, 0},
				{1, vecLen1, 0, 0, 0}})
		g.ntx.StageAguOffs(opA<<2, 0, res<<2)
		g.ntx.StageCmd(NTX_COPY_OP,
			initSel,
			NTX_COPY_AUX_REPL,
			NTX_SET_CMD_IRQ,
			false)

		if err := g.dumpAndRun(fmt.Sprintf("replicate_NTX_COPY_OP_%d", k)); err != nil {
			return err
		}
	}
	return nil
}

// Vector copy: stream a 100x10 matrix from opA to res without an init cycle.
func (g *TestDataGen) genCopyVect() error {
	const vecLen1 = 100
	const vecLen2 = 10

	g.bus.Fill(tcdmPoison)
	opA := uint32(vecLen1*vecLen2 + 10)
	res := uint32(0)

	for n := uint32(0); n < vecLen1*vecLen2; n++ {
		g.setWord(opA+n, g.randFp32())
	}

	g.ntx.StageLoopNest(0, 0, 2,
		NTXLoopBounds{vecLen1, vecLen2},
		NTXStrides{
			{1, vecLen1, 0, 0, 0},
			{0, 0, 0, 0, 0},
			{1, vecLen1, 0, 0, 0}})
	g.ntx.StageAguOffs(opA<<2, 0, res<<2)
	g.ntx.StageCmd(NTX_COPY_OP,
		NTX_INIT_WITH_ZERO,
		NTX_COPY_AUX_VECT,
		NTX_SET_CMD_IRQ,
		false)

	return g.dumpAndRun("vector_NTX_COPY_OP_0")
}
