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

// ntx_broadcast.go - Broadcast staging over a contiguous set of NTX instances

/*
A cluster carries several NTX instances, and the hardware exposes a broadcast
alias that mirrors register writes to all of them. The emulator models this
as a handle over the sibling engines: staging calls fan out verbatim, and an
issue runs every sibling synchronously in index order. The siblings share no
state; on hardware they would run in parallel, and the semantics are defined
as "as if executed in sibling index order".
*/

package main

// NTXBroadcast fans staging and issue out to a set of sibling engines.
type NTXBroadcast struct {
	siblings []*NTXEngine
}

// NewNTXBroadcast creates a broadcast handle over the given engines.
func NewNTXBroadcast(siblings ...*NTXEngine) *NTXBroadcast {
	return &NTXBroadcast{siblings: siblings}
}

// Siblings returns the engines behind the handle.
func (b *NTXBroadcast) Siblings() []*NTXEngine {
	return b.siblings
}

// StageLoopNest stages the loop nest on every sibling.
func (b *NTXBroadcast) StageLoopNest(initLevel, innerLevel, outerLevel uint32, loopBound NTXLoopBounds, aguStride NTXStrides) error {
	for _, ntx := range b.siblings {
		if err := ntx.StageLoopNest(initLevel, innerLevel, outerLevel, loopBound, aguStride); err != nil {
			return err
		}
	}
	return nil
}

// StageAguOffs stages the AGU base offsets on every sibling.
func (b *NTXBroadcast) StageAguOffs(aguOff0, aguOff1, aguOff2 uint32) {
	for _, ntx := range b.siblings {
		ntx.StageAguOffs(aguOff0, aguOff1, aguOff2)
	}
}

// StageAguOff stages a single AGU base offset on every sibling.
func (b *NTXBroadcast) StageAguOff(idx int, aguOff uint32) {
	for _, ntx := range b.siblings {
		ntx.StageAguOff(idx, aguOff)
	}
}

// StageCmd stages the command word on every sibling.
func (b *NTXBroadcast) StageCmd(opCode, initSel, auxFunc, irqCfg uint8, polarity bool) {
	for _, ntx := range b.siblings {
		ntx.StageCmd(opCode, initSel, auxFunc, irqCfg, polarity)
	}
}

// IssueCmd issues the staged job on every sibling in index order. The first
// configuration error halts that sibling and aborts the fan-out.
func (b *NTXBroadcast) IssueCmd() error {
	for _, ntx := range b.siblings {
		if err := ntx.IssueCmd(); err != nil {
			return err
		}
	}
	return nil
}

// ClrIrq clears pending interrupts on every sibling.
func (b *NTXBroadcast) ClrIrq() {
	for _, ntx := range b.siblings {
		ntx.ClrIrq()
	}
}
