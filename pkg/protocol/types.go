package protocol

// Type identifies the kind of message.
type Type uint8

// Command types (client → server).
const (
	TypeHello Type = 1

	TypeNewPainting     Type = 20
	TypeAdvancePainting Type = 21

	TypeNewGeneration     Type = 40
	TypeAwakenRandomCell  Type = 41
	TypeKillRandomCell    Type = 42
	TypeAdvanceGeneration Type = 43
	TypeKillAllCells      Type = 45

	TypeColoredPixel Type = 200
)

// Draw event types (server → clients).
const (
	TypeDrawPixel Type = 100
	TypeDrawFrame Type = 101
)

// String returns the string representation of the message type.
func (t Type) String() string {
	switch t {
	case TypeHello:
		return "Hello"
	case TypeNewPainting:
		return "NewPainting"
	case TypeAdvancePainting:
		return "AdvancePainting"
	case TypeNewGeneration:
		return "NewGeneration"
	case TypeAwakenRandomCell:
		return "AwakenRandomCell"
	case TypeKillRandomCell:
		return "KillRandomCell"
	case TypeAdvanceGeneration:
		return "AdvanceGeneration"
	case TypeKillAllCells:
		return "KillAllCells"
	case TypeColoredPixel:
		return "ColoredPixel"
	case TypeDrawPixel:
		return "DrawPixel"
	case TypeDrawFrame:
		return "DrawFrame"
	default:
		return "Unknown"
	}
}
