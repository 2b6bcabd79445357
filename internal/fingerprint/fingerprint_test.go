/*
Copyright © 2026 sodagql contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastPathEqualIgnoresHash(t *testing.T) {
	a := Fingerprint{Hash: "aaa", SizeBytes: 10, MtimeMs: 100}
	b := Fingerprint{Hash: "bbb", SizeBytes: 10, MtimeMs: 100}
	assert.True(t, FastPathEqual(a, b))
	assert.False(t, Equal(a, b))
}

func TestMemoInvalidate(t *testing.T) {
	m := NewMemo()
	fp := Compute([]byte("hello"), 5, 1000)
	m.Set("/a.ts", fp)

	got, ok := m.Get("/a.ts")
	assert.True(t, ok)
	assert.Equal(t, fp, got)

	m.Invalidate("/a.ts")
	_, ok = m.Get("/a.ts")
	assert.False(t, ok)
}

func TestSignatureIsDeterministic(t *testing.T) {
	a := Signature([]byte("const x = 1;"))
	b := Signature([]byte("const x = 1;"))
	c := Signature([]byte("const x = 2;"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
