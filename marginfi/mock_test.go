package marginfi_test

import (
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/bridgesplit/marginfi-v2/marginfi"
)

type mockRPCClient struct {
	GetAccountInfoWithOptsFunc      func(ctx context.Context, account solana.PublicKey, opts *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error)
	GetMultipleAccountsWithOptsFunc func(ctx context.Context, accounts []solana.PublicKey, opts *solanarpc.GetMultipleAccountsOpts) (*solanarpc.GetMultipleAccountsResult, error)
}

func (m *mockRPCClient) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error) {
	return m.GetAccountInfoWithOptsFunc(ctx, account, opts)
}

func (m *mockRPCClient) GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *solanarpc.GetMultipleAccountsOpts) (*solanarpc.GetMultipleAccountsResult, error) {
	return m.GetMultipleAccountsWithOptsFunc(ctx, accounts, opts)
}

// newLedgerMock builds a mock RPC backed by a fixed address-to-bytes map.
// Missing addresses behave like absent ledger accounts: an empty result
// for single fetches and a nil entry for batched ones.
func newLedgerMock(accounts map[solana.PublicKey][]byte) *mockRPCClient {
	return &mockRPCClient{
		GetAccountInfoWithOptsFunc: func(_ context.Context, account solana.PublicKey, _ *solanarpc.GetAccountInfoOpts) (*solanarpc.GetAccountInfoResult, error) {
			data, ok := accounts[account]
			if !ok {
				return &solanarpc.GetAccountInfoResult{}, nil
			}
			return &solanarpc.GetAccountInfoResult{
				Value: &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(data)},
			}, nil
		},
		GetMultipleAccountsWithOptsFunc: func(_ context.Context, addrs []solana.PublicKey, _ *solanarpc.GetMultipleAccountsOpts) (*solanarpc.GetMultipleAccountsResult, error) {
			out := &solanarpc.GetMultipleAccountsResult{Value: make([]*solanarpc.Account, len(addrs))}
			for i, addr := range addrs {
				data, ok := accounts[addr]
				if !ok {
					continue
				}
				out.Value[i] = &solanarpc.Account{Data: solanarpc.DataBytesOrJSONFromBytes(data)}
			}
			return out, nil
		},
	}
}

func newTestClient(t *testing.T, rpc marginfi.RPCClient, cfg marginfi.Config) *marginfi.Client {
	t.Helper()
	client, err := marginfi.New(slog.Default(), rpc, cfg)
	require.NoError(t, err)
	return client
}

func randI80F48() marginfi.WrappedI80F48 {
	return marginfi.WrappedI80F48{Value: marginfi.Int128{Lo: rand.Uint64(), Hi: rand.Uint64()}}
}

func newTestBank(group solana.PublicKey) *marginfi.Bank {
	return &marginfi.Bank{
		MintPK:              solana.NewWallet().PublicKey(),
		Group:               group,
		DepositShareValue:   marginfi.I80F48FromFloat64(1),
		LiabilityShareValue: marginfi.I80F48FromFloat64(1),
		LiquidityVault:      solana.NewWallet().PublicKey(),
		InsuranceVault:      solana.NewWallet().PublicKey(),
		FeeVault:            solana.NewWallet().PublicKey(),
		Config: marginfi.BankConfig{
			DepositWeightInit:    marginfi.I80F48FromFloat64(0.9),
			DepositWeightMaint:   marginfi.I80F48FromFloat64(0.95),
			LiabilityWeightInit:  marginfi.I80F48FromFloat64(1.1),
			LiabilityWeightMaint: marginfi.I80F48FromFloat64(1.05),
			MaxCapacity:          1_000_000,
			PythOracle:           solana.NewWallet().PublicKey(),
			InterestRateConfig: marginfi.InterestRateConfig{
				OptimalUtilizationRate: marginfi.I80F48FromFloat64(0.6),
				PlateauInterestRate:    marginfi.I80F48FromFloat64(0.4),
				MaxInterestRate:        marginfi.I80F48FromFloat64(3),
				ProtocolFixedFeeAPR:    marginfi.I80F48FromFloat64(0.01),
			},
		},
		TotalBorrowShares:  randI80F48(),
		TotalDepositShares: randI80F48(),
		LastUpdate:         1_700_000_000,
	}
}

func mustSerialize(t *testing.T, v interface{ Serialize() ([]byte, error) }) []byte {
	t.Helper()
	data, err := v.Serialize()
	require.NoError(t, err)
	return data
}
