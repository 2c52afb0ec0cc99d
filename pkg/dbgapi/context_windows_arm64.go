/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

// CONTEXT layout for ARM64.
const (
	contextSize        = 912
	contextAlignment   = 16
	contextFlagsOffset = 0
	contextAll         = 0x0040000F // CONTEXT_ARM64 | CONTROL | INTEGER | FLOATING_POINT | DEBUG
)
