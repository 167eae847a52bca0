package marginfi_test

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"math/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/require"

	"github.com/bridgesplit/marginfi-v2/marginfi"
)

func TestState_GroupRoundTrip(t *testing.T) {
	t.Parallel()

	original := &marginfi.MarginfiGroup{
		Admin: solana.NewWallet().PublicKey(),
	}
	for i := range original.ReservedSpace {
		original.ReservedSpace[i] = marginfi.Uint128{Lo: rand.Uint64(), Hi: rand.Uint64()}
	}

	data := mustSerialize(t, original)
	require.True(t, bytes.HasPrefix(data, marginfi.DiscriminatorMarginfiGroup[:]))
	require.Len(t, data, 552)

	decoded, err := marginfi.DeserializeMarginfiGroup(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestState_AccountRoundTrip(t *testing.T) {
	t.Parallel()

	original := &marginfi.MarginfiAccount{
		Authority: solana.NewWallet().PublicKey(),
		Group:     solana.NewWallet().PublicKey(),
	}
	for i := range original.ReservedSpace {
		original.ReservedSpace[i] = marginfi.Uint128{Lo: rand.Uint64(), Hi: rand.Uint64()}
	}

	data := mustSerialize(t, original)
	require.True(t, bytes.HasPrefix(data, marginfi.DiscriminatorMarginfiAccount[:]))
	require.Len(t, data, 1096)

	decoded, err := marginfi.DeserializeMarginfiAccount(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestState_BankRoundTrip(t *testing.T) {
	t.Parallel()

	original := newTestBank(solana.NewWallet().PublicKey())

	data := mustSerialize(t, original)
	require.True(t, bytes.HasPrefix(data, marginfi.DiscriminatorBank[:]))
	require.Len(t, data, 456)

	decoded, err := marginfi.DeserializeBank(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

// Cross-checks the account layout against an independent borsh
// serializer.
func TestState_AccountLayoutMatchesBorsh(t *testing.T) {
	t.Parallel()

	type accountLayout struct {
		Authority     [32]byte
		Group         [32]byte
		ReservedSpace [64][16]byte
	}

	authority := solana.NewWallet().PublicKey()
	group := solana.NewWallet().PublicKey()

	var layout accountLayout
	copy(layout.Authority[:], authority.Bytes())
	copy(layout.Group[:], group.Bytes())
	for i := range layout.ReservedSpace {
		rand.Read(layout.ReservedSpace[i][:])
	}

	body, err := borsh.Serialize(layout)
	require.NoError(t, err)

	data := append(marginfi.DiscriminatorMarginfiAccount[:], body...)
	decoded, err := marginfi.DeserializeMarginfiAccount(data)
	require.NoError(t, err)
	require.Equal(t, authority, decoded.Authority)
	require.Equal(t, group, decoded.Group)
	for i, word := range layout.ReservedSpace {
		require.Equal(t, binary.LittleEndian.Uint64(word[:8]), decoded.ReservedSpace[i].Lo)
		require.Equal(t, binary.LittleEndian.Uint64(word[8:]), decoded.ReservedSpace[i].Hi)
	}
}

func TestState_BankFieldOffsets(t *testing.T) {
	t.Parallel()

	bank := newTestBank(solana.NewWallet().PublicKey())
	data := mustSerialize(t, bank)

	// discriminator 8, mint 32, group 32, share values 32, vaults 96,
	// config weights 64 -> MaxCapacity at 264.
	require.Equal(t, bank.Config.MaxCapacity, binary.LittleEndian.Uint64(data[264:]))
	// LastUpdate occupies the final 8 bytes.
	require.Equal(t, bank.LastUpdate, int64(binary.LittleEndian.Uint64(data[len(data)-8:])))
	// Group pubkey sits right after the mint.
	require.Equal(t, bank.Group.Bytes(), data[40:72])
}

func TestState_DiscriminatorMismatch(t *testing.T) {
	t.Parallel()

	groupData := mustSerialize(t, &marginfi.MarginfiGroup{Admin: solana.NewWallet().PublicKey()})

	_, err := marginfi.DeserializeBank(groupData)
	require.ErrorIs(t, err, marginfi.ErrInvalidDiscriminator)

	_, err = marginfi.DeserializeMarginfiAccount(groupData)
	require.ErrorIs(t, err, marginfi.ErrInvalidDiscriminator)
}

func TestState_TruncatedData(t *testing.T) {
	t.Parallel()

	_, err := marginfi.DeserializeMarginfiGroup([]byte{1, 2, 3})
	require.ErrorIs(t, err, marginfi.ErrInvalidDiscriminator)

	data := mustSerialize(t, &marginfi.MarginfiGroup{Admin: solana.NewWallet().PublicKey()})
	_, err = marginfi.DeserializeMarginfiGroup(data[:100])
	require.Error(t, err)
	require.Contains(t, err.Error(), "deserializing account")
}

func TestState_I80F48(t *testing.T) {
	t.Parallel()

	t.Run("float conversions", func(t *testing.T) {
		require.InDelta(t, 1.5, marginfi.I80F48FromFloat64(1.5).Float64(), 1e-12)
		require.InDelta(t, -2.25, marginfi.I80F48FromFloat64(-2.25).Float64(), 1e-12)
		require.Zero(t, marginfi.I80F48FromFloat64(0).Float64())
		require.InDelta(t, 0.0038, marginfi.I80F48FromFloat64(0.0038).Float64(), 1e-12)
	})

	t.Run("one has only bit 48 set", func(t *testing.T) {
		one := marginfi.I80F48FromFloat64(1)
		require.Equal(t, marginfi.Int128{Lo: 1 << 48, Hi: 0}, one.Value)
	})

	t.Run("negative bit pattern round trip", func(t *testing.T) {
		v := big.NewInt(-123456789)
		bits := marginfi.Int128FromBigInt(v)
		require.Zero(t, v.Cmp(bits.BigInt()))
	})

	t.Run("serialized as 16 little-endian bytes", func(t *testing.T) {
		bank := newTestBank(solana.NewWallet().PublicKey())
		bank.DepositShareValue = marginfi.I80F48FromFloat64(1)
		data := mustSerialize(t, bank)
		// DepositShareValue starts at offset 72.
		require.Equal(t, uint64(1<<48), binary.LittleEndian.Uint64(data[72:]))
		require.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[80:]))
	})
}
