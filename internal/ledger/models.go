package ledger

type (
	// Entry is one issued payload and the image it was embedded into.
	Entry struct {
		ID          string
		Fingerprint string
		Timestamp   int64 // ms since epoch
		Meta        string
		Width       int
		Height      int
		Bits        int // embedded bitstream length
	}
)
