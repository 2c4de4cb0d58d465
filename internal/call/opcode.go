package call

import "strconv"

// Opcode selects the ledger operation a call performs. The numeric
// values are the wire contract.
type Opcode uint8

const (
	OpInitialize           Opcode = 0
	OpClaimOoga            Opcode = 1
	OpExchangeOogaForBooga Opcode = 2
	OpQueryOogaBalance     Opcode = 3
	OpQueryBoogaBalance    Opcode = 4
	OpQueryTotalOoga       Opcode = 5
	OpQueryTotalBooga      Opcode = 6
)

// ParseOpcode parses the leading input token as a base-10 opcode.
// Anything outside [0, 255] fails with ErrInvalidOpcodeFormat. Tokens
// in range with no assigned operation parse fine and are rejected at
// dispatch instead.
func ParseOpcode(token string) (Opcode, error) {
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil || n < 0 || n > 255 {
		return 0, ErrInvalidOpcodeFormat
	}
	return Opcode(n), nil
}

func (op Opcode) String() string {
	switch op {
	case OpInitialize:
		return "Initialize"
	case OpClaimOoga:
		return "ClaimOoga"
	case OpExchangeOogaForBooga:
		return "ExchangeOogaForBooga"
	case OpQueryOogaBalance:
		return "QueryOogaBalance"
	case OpQueryBoogaBalance:
		return "QueryBoogaBalance"
	case OpQueryTotalOoga:
		return "QueryTotalOoga"
	case OpQueryTotalBooga:
		return "QueryTotalBooga"
	default:
		return "Unknown"
	}
}
