package packet

// ProtocolVersion is sent in S_HELLO; clients refuse a different major.
const ProtocolVersion uint16 = 1

// Client opcodes.
const (
	C_OPCODE_HELLO           byte = 1
	C_OPCODE_AUTH            byte = 2
	C_OPCODE_QUIT            byte = 3
	C_OPCODE_SELECT          byte = 10
	C_OPCODE_DESELECT        byte = 11
	C_OPCODE_PICK            byte = 12
	C_OPCODE_CLEAR_SELECTION byte = 13
	C_OPCODE_KEY             byte = 14
	C_OPCODE_UNDO            byte = 20
	C_OPCODE_REDO            byte = 21
	C_OPCODE_REMOVE_SELECTED byte = 22
	C_OPCODE_CURVES          byte = 23
	C_OPCODE_LOAD_MODEL      byte = 30
	C_OPCODE_CLEAR_MODEL     byte = 31
	C_OPCODE_QUERY_STATE     byte = 40
)

// Server opcodes.
const (
	S_OPCODE_HELLO         byte = 101
	S_OPCODE_AUTH_RESULT   byte = 102
	S_OPCODE_SELECTED      byte = 110
	S_OPCODE_UNSELECTED    byte = 111
	S_OPCODE_MODEL_CLEARED byte = 120
	S_OPCODE_MODEL_LOADING byte = 121
	S_OPCODE_HISTORY       byte = 130
	S_OPCODE_STATE         byte = 140
	S_OPCODE_SELECTION     byte = 141
	S_OPCODE_ERROR         byte = 150
)

// S_MODEL_LOADING stages.
const (
	LoadingStarted byte = 0
	LoadingDone    byte = 1
	LoadingFailed  byte = 2
)

// S_AUTH_RESULT codes.
const (
	AuthOK       byte = 0
	AuthRejected byte = 1
	AuthThrottle byte = 2
)
