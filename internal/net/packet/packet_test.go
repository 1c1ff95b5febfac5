package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriterWithOpcode(C_OPCODE_PICK)
	w.WriteS("2O2Fr$t4X7Zf8NOew3FLOH")
	w.WriteBool(true)
	w.WriteH(513)
	w.WriteD(-7)

	r := NewReader(w.Bytes())
	assert.Equal(t, C_OPCODE_PICK, r.Opcode())
	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FLOH", r.ReadS())
	assert.True(t, r.ReadBool())
	assert.Equal(t, uint16(513), r.ReadH())
	assert.Equal(t, int32(-7), r.ReadD())
	assert.Equal(t, 0, r.Remaining())
	assert.NoError(t, r.Err())
}

func TestReaderShortPacket(t *testing.T) {
	r := NewReader([]byte{C_OPCODE_CURVES})
	assert.False(t, r.ReadBool())
	assert.ErrorIs(t, r.Err(), ErrShortPacket)

	r = NewReader([]byte{C_OPCODE_SELECT})
	assert.Equal(t, "", r.ReadS())
	assert.ErrorIs(t, r.Err(), ErrShortPacket)

	// Empty but terminated string is a valid field.
	r = NewReader([]byte{C_OPCODE_SELECT, 0})
	assert.Equal(t, "", r.ReadS())
	assert.NoError(t, r.Err())
}

func TestCharset(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetCharset("utf-8")) })

	require.NoError(t, SetCharset("windows-1252"))
	assert.Equal(t, "windows-1252", Charset())

	w := NewWriterWithOpcode(S_OPCODE_ERROR)
	w.WriteS("Façade")
	// ç is a single byte in windows-1252.
	assert.Equal(t, []byte{S_OPCODE_ERROR, 'F', 'a', 0xE7, 'a', 'd', 'e', 0}, w.Bytes())
	assert.Equal(t, "Façade", NewReader(w.Bytes()).ReadS())

	assert.Error(t, SetCharset("no-such-charset"))

	require.NoError(t, SetCharset(""))
	assert.Equal(t, "utf-8", Charset())
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(nil)
	var got string
	reg.Register(C_OPCODE_SELECT, []SessionState{StateAuthenticated}, func(sess any, r *Reader) {
		got = sess.(string) + ":" + r.ReadS()
	})

	w := NewWriterWithOpcode(C_OPCODE_SELECT)
	w.WriteS("abc")

	err := reg.Dispatch("s1", StateHandshake, w.Bytes())
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Empty(t, got)

	require.NoError(t, reg.Dispatch("s1", StateAuthenticated, w.Bytes()))
	assert.Equal(t, "s1:abc", got)

	assert.NoError(t, reg.Dispatch("s1", StateAuthenticated, []byte{99}))
	assert.ErrorIs(t, reg.Dispatch("s1", StateAuthenticated, nil), ErrEmptyPacket)
	assert.True(t, reg.Registered(C_OPCODE_SELECT))
	assert.False(t, reg.Registered(C_OPCODE_UNDO))
}

func TestRegistryRecoversPanic(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(C_OPCODE_UNDO, []SessionState{StateAuthenticated}, func(any, *Reader) {
		panic("boom")
	})
	err := reg.Dispatch(nil, StateAuthenticated, []byte{C_OPCODE_UNDO})
	assert.ErrorIs(t, err, ErrPanic)
}
