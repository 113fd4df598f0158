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

// ntx_constants.go - Centralized register map and hardware constants for the NTX emulator

/*
ntx_constants.go - Master Constant Definitions

This file provides a centralized reference for the NTX network training
accelerator as seen from the controlling core. The values mirror the SV/VHDL
generics of the hardware and must not be changed independently of it.

MEMORY MAP OVERVIEW
===================

Address Range           Size    Device              Constants
---------------------------------------------------------------------------
0x00000000-0x0001FFFF   128KB   TCDM scratchpad     TCDM_MEMSIZE, TCDM_SIZE_BYTES
0x10204800-0x1020486B   108B    NTX register file   NTX_BASE_ADDR, NTX_*_REG
0x10204C00              -       NTX broadcast alias NTX_BROADCAST_ADDR

REGISTER FILE DETAILS (word offsets from NTX_BASE_ADDR)
=======================================================

0x00  STAT   status (bit0 idle, bit1 empty pipeline, bit2 no error,
             bit3 halted, bit4 command FIFO full)
0x01  CTRL   bit0 soft reset (write 1), bits 2:1 TCDM arbitration priority
0x02  CMD    command word, write triggers execution (layout below)
0x03  IRQ    pending interrupt flag, write nonzero to clear
0x04  LOOP0..LOOP4   per-level loop bound (count minus one, 16 bit)
0x09  AGU0 base, AGU0 stride0..stride4 (incremental byte strides)
0x0F  AGU1 base, AGU1 stride0..stride4
0x15  AGU2 base, AGU2 stride0..stride4

COMMAND WORD LAYOUT (LSB first)
===============================

bits 0..3    opcode
bits 4..6    init level
bits 7..9    inner (writeback) level
bits 10..12  outer level
bits 13..14  init select (AGU0/AGU1/AGU2/zero)
bits 15..17  aux function
bits 18..19  irq configuration
bit  20      polarity
bits 21..31  reserved, write zero
*/

package main

// =============================================================================
// Accelerator Geometry
// =============================================================================

const (
	N_HW_LOOPS    = 5  // depth of the hardware loop nest
	HW_LOOP_WIDTH = 16 // loop bound register width in bits
	N_AGUS        = 3  // independent address generation units

	AGU_ADDR_WIDTH = 18
	ADDR_WIDTH     = 32
	DATA_WIDTH     = 32

	NTX_FPU_ALU_CNT_WIDTH = 16
)

// TCDM scratchpad shared with the controlling core. 32768 32-bit words.
const (
	TCDM_MEMSIZE    = 1024 * 128 / 4
	TCDM_SIZE_BYTES = 1024 * 128
)

// =============================================================================
// Bus Addresses
// =============================================================================

const (
	NTX_BASE_ADDR      = 0x10204800
	NTX_OFFSET         = 32 << 2 // register file span per instance
	NTX_BROADCAST_ADDR = 0x10204C00
)

// =============================================================================
// Register File (word offsets)
// =============================================================================

const (
	NTX_REG_ADDR_WIDTH = 7

	NTX_STAT_REG  = 0x00
	NTX_CTRL_REG  = 0x01
	NTX_CMD_REG   = 0x02
	NTX_IRQ_REG   = 0x03
	NTX_LOOP_REGS = 0x04 // five consecutive words
	NTX_AGU0_REGS = 0x09 // base plus five strides
	NTX_AGU1_REGS = 0x0F
	NTX_AGU2_REGS = 0x15
	NTX_NUM_REGS  = 0x1B
)

// STAT register values. isIdle checks (STAT & 0x1F) == NTX_STAT_IDLE,
// isReady checks that bit 4 is clear.
const (
	NTX_STAT_IDLE   = 0x07
	NTX_STAT_HALTED = 0x0F
	NTX_STAT_FULL   = 0x10
)

// CTRL register bits.
const (
	NTX_CTRL_SOFT_RST = 0x01

	NTX_CTRL_PRIO_HI = 0 << 1
	NTX_CTRL_PRIO_RR = 1 << 1
	NTX_CTRL_PRIO_71 = 2 << 1

	NTX_CTRL_PRIO_MASK = 0x06
)

// =============================================================================
// Command Word Fields
// =============================================================================

const (
	NTX_OPCODE_WIDTH     = 4
	NTX_LOOP_LEVEL_WIDTH = 3
)

// Opcodes. A closed set: anything outside 0..8 halts the accelerator.
const (
	NTX_MAC_OP     = 0
	NTX_VADDSUB_OP = 1
	NTX_VMULT_OP   = 2
	NTX_OUTERP_OP  = 3
	NTX_MAXMIN_OP  = 4
	NTX_THTST_OP   = 5
	NTX_MASK_OP    = 6
	NTX_MASKMAC_OP = 7
	NTX_COPY_OP    = 8

	N_NTX_OPCODES = 9
)

// Interrupt configuration.
const (
	NTX_SET_NO_IRQ  = 0
	NTX_SET_CMD_IRQ = 1
	NTX_SET_WB_IRQ  = 2
)

// Polarity bit. Inverts signs or comparison outcomes, opcode specific.
const (
	NTX_POS_POLARITY = 0
	NTX_NEG_POLARITY = 1
)

// Init source selector.
const (
	NTX_INIT_WITH_AGU0 = 0
	NTX_INIT_WITH_AGU1 = 1
	NTX_INIT_WITH_AGU2 = 2
	NTX_INIT_WITH_ZERO = 3
)

// =============================================================================
// Aux Function Values (per opcode family)
// =============================================================================

// MAC, VADDSUB, VMULT, OUTERP
const (
	NTX_MAC_AUX_STD  = 0
	NTX_MAC_AUX_RELU = 1
)

// MAXMIN
const (
	NTX_MAXMIN_AUX_STD = 0
	NTX_MAXMIN_AUX_ARG = 1
)

// THTST. BIN_OUT can be or'ed with the compare modes.
const (
	NTX_THTST_AUX_CMP_EQ  = 0
	NTX_THTST_AUX_CMP_LT  = 1
	NTX_THTST_AUX_CMP_LE  = 2
	NTX_THTST_AUX_BIN_OUT = 4
)

// MASK, MASKMAC. CMP_CNT selects the counter compare mode.
const (
	NTX_MASK_AUX_CMP_EQ  = 0
	NTX_MASK_AUX_CMP_LT  = 1
	NTX_MASK_AUX_CMP_LE  = 2
	NTX_MASK_AUX_CMP_CNT = 4
)

// COPY. REPL deposits the init value, VECT streams AGU0 without an init cycle.
const (
	NTX_COPY_AUX_REPL = 0
	NTX_COPY_AUX_VECT = 1
)

// =============================================================================
// fp32 / Accumulator Geometry
// =============================================================================

// The accumulator is 284 bits wide: 1 sign bit, 2^8 bits of exponent range,
// 23 mantissa bits and 4 overflow guard bits. It is emulated with five
// uint64 limbs, least significant first. The hardware implements it with
// partial carry save arithmetic, hence the "pcs" naming.
const (
	FP32_N_ACCU_OFLOW_BITS = 4
	FP32_N_ACCU_WORDS      = 5

	FP32_ZERO_VAL = 0x00000000
	FP32_ONE_VAL  = 0x3F800000
	FP32_INF_VAL  = 0x7F800000

	FP32_EXP_WIDTH        = 8
	FP32_MANT_WIDTH       = 23
	FP32_EXP_MASK         = 0x7F800000
	FP32_EXP_MASK_ALIGNED = 0x000000FF
	FP32_MANT_MASK        = 0x007FFFFF
	FP32_MANT_MASK_EXT    = 0x00FFFFFF
	FP32_SIGN_MASK        = 0x80000000
	FP32_BIAS             = 127

	FP32_PCS_WIDTH = 1 + (1 << FP32_EXP_WIDTH) + FP32_MANT_WIDTH + FP32_N_ACCU_OFLOW_BITS
)

// =============================================================================
// Debug Tracing
// =============================================================================

// ntxDebugLevel gates trace output from the loop driver and the opcode
// phases. 0 is silent, 1 traces loop frames, 2 additionally traces operand
// fetches and stores. Set from main via the -trace flag.
var ntxDebugLevel = 0
