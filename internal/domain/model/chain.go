package model

type Ledger string

const (
	LedgerRelay    Ledger = "relay"
	LedgerCoretime Ledger = "coretime"
)

func (l Ledger) String() string {
	return string(l)
}

// SystemChainThreshold is the first ParaID that is not a system chain.
const SystemChainThreshold ParaID = 2000

type ParaID uint32

// IsSystemChain reports whether the para is a system chain and therefore
// receives a reservation rather than a lease on the coretime ledger.
func (p ParaID) IsSystemChain() bool {
	return p < SystemChainThreshold
}

type BlockNumber uint32

// TimeSlice counts fixed-width periods of relay blocks since genesis.
type TimeSlice int64

type CoreCount uint32

type BlockRef struct {
	Number BlockNumber
	Hash   string
}
