// Package fingerprint derives content hashes used as idempotency keys for
// derived artifacts (snapshots, scores, cost updates).
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// Of returns the hex encoded sha256 of the canonical JSON encoding of v.
// Map keys are sorted; slices must already be in a deterministic order.
func Of(v any) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigStd.NewEncoder(buf).Encode(v); err != nil {
		return "", crerr.Wrap(err, "encode fingerprint input")
	}

	sum := sha256.Sum256(buf.B)
	return hex.EncodeToString(sum[:]), nil
}

// Equal reports whether two fingerprints match. Empty values never match.
func Equal(a, b string) bool {
	return a != "" && a == b
}
