/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package dbgapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimLongPathPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected string
	}{
		{`\\?\C:\Windows\System32\kernel32.dll`, `C:\Windows\System32\kernel32.dll`},
		{`\\?\UNC\server\share\app.exe`, `\\server\share\app.exe`},
		{`C:\app.exe`, `C:\app.exe`},
		{``, ``},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, trimLongPathPrefix(tc.path), "path %q", tc.path)
	}
}
