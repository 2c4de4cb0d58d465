package ledger

// Storage key layout. Addresses are appended verbatim, so any string
// (including the empty string) names a distinct account.
//
//	/ooga-balance/<address>  -> 16-byte LE u128
//	/booga-balance/<address> -> 16-byte LE u128
//	/total-ooga              -> 16-byte LE u128
//	/total-booga             -> 16-byte LE u128
const (
	OogaBalancePrefix  = "/ooga-balance/"
	BoogaBalancePrefix = "/booga-balance/"
	TotalOogaKey       = "/total-ooga"
	TotalBoogaKey      = "/total-booga"
)

// OogaBalanceKey returns the storage key holding an address's OOGA
// balance.
func OogaBalanceKey(address string) string {
	return OogaBalancePrefix + address
}

// BoogaBalanceKey returns the storage key holding an address's BOOGA
// balance.
func BoogaBalanceKey(address string) string {
	return BoogaBalancePrefix + address
}
