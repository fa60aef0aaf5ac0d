package pipeline

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/theirongolddev/dshield/internal/engine"
)

// algorithmVersion is mixed into every fingerprint. Bump it whenever the
// engine's draws or accounting change so stale cache rows stop matching.
const algorithmVersion = "dshield-mc/v1"

// Fingerprint returns a stable hex digest of everything that determines a
// simulation's result. Worker count is deliberately absent.
func Fingerprint(in engine.Inputs) string {
	h := sha256.New()
	h.Write([]byte(algorithmVersion))

	var buf [8]byte
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	putUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	putUint(uint64(in.Trials))
	putUint(in.Seed)
	putFloat(in.IncomeMean)
	putFloat(in.ExpenseMean)
	putFloat(in.IncomeVariance)
	putFloat(in.ExpenseVariance)
	putFloat(in.Correlation)
	putFloat(in.StartingCash)

	putUint(uint64(in.Debts.Len()))
	for i := 0; i < in.Debts.Len(); i++ {
		d := in.Debts.Debt(i)
		putFloat(d.Balance)
		putFloat(d.Payment)
		putFloat(d.MonthlyRate)
		putFloat(d.TermMonths)
	}

	return hex.EncodeToString(h.Sum(nil))
}
