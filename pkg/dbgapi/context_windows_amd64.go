/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

// CONTEXT layout for x64.
const (
	contextSize        = 1232
	contextAlignment   = 16
	contextFlagsOffset = 0x30
	contextAll         = 0x0010001F // CONTEXT_AMD64 | CONTROL | INTEGER | SEGMENTS | FLOATING_POINT | DEBUG_REGISTERS
)
