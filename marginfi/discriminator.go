package marginfi

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

const discriminatorSize = 8

var (
	DiscriminatorMarginfiGroup   = anchorDiscriminator("MarginfiGroup")
	DiscriminatorMarginfiAccount = anchorDiscriminator("MarginfiAccount")
	DiscriminatorBank            = anchorDiscriminator("Bank")

	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
)

// anchorDiscriminator computes the 8-byte account discriminator the way
// anchor does: sha256("account:<StructName>")[:8].
func anchorDiscriminator(name string) [8]byte {
	h := sha256.Sum256([]byte("account:" + name))
	var disc [8]byte
	copy(disc[:], h[:8])
	return disc
}

func validateDiscriminator(data []byte, expected [8]byte) error {
	if len(data) < discriminatorSize {
		return fmt.Errorf("%w: data too short", ErrInvalidDiscriminator)
	}
	var got [8]byte
	copy(got[:], data[:8])
	if got != expected {
		return fmt.Errorf("%w: got %x, want %x", ErrInvalidDiscriminator, got, expected)
	}
	return nil
}
