package testutil

// Well-known principals used across tests. They only contain digits so the
// checksummed form equals the literal.
const (
	EscrowAccount = "0x9999999999999999999999999999999999999999"

	Admin    = "0x1111111111111111111111111111111111111111"
	Creator  = "0x2222222222222222222222222222222222222222"
	Creator2 = "0x3333333333333333333333333333333333333333"
	Winner1  = "0x4444444444444444444444444444444444444444"
	Winner2  = "0x5555555555555555555555555555555555555555"
	Referrer = "0x6666666666666666666666666666666666666666"
	Stranger = "0x7777777777777777777777777777777777777777"

	TokenA = "0x1000000000000000000000000000000000000001"
	TokenB = "0x2000000000000000000000000000000000000002"

	ZeroAddress = "0x0000000000000000000000000000000000000000"
)
