package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/bridgesplit/marginfi-v2/marginfi"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marginfi-cli",
		Short: "Inspect marginfi on-chain state for a group deployment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		verbose    bool
		env        string
		rpcURL     string
		groupAddr  string
		bankAddrs  []string
		commitment string
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "mainnet-beta", "Solana environment (mainnet-beta, testnet, devnet, localnet)")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "Solana RPC URL override")
	rootCmd.PersistentFlags().StringVarP(&groupAddr, "group", "g", "", "marginfi group address")
	rootCmd.PersistentFlags().StringSliceVarP(&bankAddrs, "banks", "b", nil, "bank addresses belonging to the group")
	rootCmd.PersistentFlags().StringVar(&commitment, "commitment", "", "read commitment level (processed, confirmed, finalized)")

	newClient := func() (*marginfi.Client, error) {
		url, ok := marginfi.SolanaRPCURLs[env]
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", env)
		}
		if rpcURL != "" {
			url = rpcURL
		}

		groupPK, err := solana.PublicKeyFromBase58(groupAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid --group: %w", err)
		}
		bankPKs := make([]solana.PublicKey, 0, len(bankAddrs))
		for _, addr := range bankAddrs {
			pk, err := solana.PublicKeyFromBase58(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid bank address %q: %w", addr, err)
			}
			bankPKs = append(bankPKs, pk)
		}

		return marginfi.New(newLogger(verbose), solanarpc.New(url), marginfi.Config{
			GroupPK:    groupPK,
			BankPKs:    bankPKs,
			Commitment: solanarpc.CommitmentType(commitment),
		})
	}

	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Show the group record and its banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			group, err := client.FetchGroup(ctx, "")
			if err != nil {
				return err
			}
			printGroup(group)
			return nil
		},
	}

	accountCmd := &cobra.Command{
		Use:   "account <pubkey>",
		Short: "Show a marginfi account and its group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountPK, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid account address: %w", err)
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			account, err := client.FetchAccount(ctx, accountPK, "")
			if err != nil {
				return err
			}

			authority, group := account.Snapshot()
			fmt.Printf("Account (%s)\n", account.Pubkey())
			fmt.Printf("%-12s %s\n", "Authority:", authority)
			fmt.Println()
			printGroup(group)
			return nil
		},
	}

	var programID string
	vaultsCmd := &cobra.Command{
		Use:   "vaults <bank-pubkey>",
		Short: "Show the derived vault addresses of a bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bankPK, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid bank address: %w", err)
			}
			pid, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid --program-id: %w", err)
			}

			fmt.Printf("Bank Vaults (%s)\n", bankPK)
			for _, vault := range []marginfi.BankVaultType{
				marginfi.BankVaultTypeLiquidity,
				marginfi.BankVaultTypeInsurance,
				marginfi.BankVaultTypeFee,
			} {
				addr, _, err := marginfi.DeriveBankVaultPDA(pid, bankPK, vault)
				if err != nil {
					return fmt.Errorf("deriving %s vault: %w", vault, err)
				}
				auth, _, err := marginfi.DeriveBankVaultAuthorityPDA(pid, bankPK, vault)
				if err != nil {
					return fmt.Errorf("deriving %s vault authority: %w", vault, err)
				}
				fmt.Printf("%-22s %s\n", vault.String()+" vault:", addr)
				fmt.Printf("%-22s %s\n", vault.String()+" authority:", auth)
			}
			return nil
		},
	}
	vaultsCmd.Flags().StringVar(&programID, "program-id", "", "marginfi program ID")
	_ = vaultsCmd.MarkFlagRequired("program-id")

	rootCmd.AddCommand(groupCmd, accountCmd, vaultsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printGroup(group *marginfi.Group) {
	fmt.Printf("Group (%s)\n", group.Pubkey())
	fmt.Printf("%-12s %s\n", "Admin:", group.Admin())
	fmt.Printf("%-12s %d\n", "Banks:", len(group.Banks()))

	for addr, bank := range group.Banks() {
		fmt.Println()
		fmt.Printf("Bank (%s)\n", addr)
		fmt.Printf("  %-28s %s\n", "Mint:", bank.MintPK)
		fmt.Printf("  %-28s %s\n", "Liquidity Vault:", bank.LiquidityVault)
		fmt.Printf("  %-28s %s\n", "Insurance Vault:", bank.InsuranceVault)
		fmt.Printf("  %-28s %s\n", "Fee Vault:", bank.FeeVault)
		fmt.Printf("  %-28s %.6f\n", "Deposit Share Value:", bank.DepositShareValue.Float64())
		fmt.Printf("  %-28s %.6f\n", "Liability Share Value:", bank.LiabilityShareValue.Float64())
		fmt.Printf("  %-28s %.2f\n", "Total Deposit Shares:", bank.TotalDepositShares.Float64())
		fmt.Printf("  %-28s %.2f\n", "Total Borrow Shares:", bank.TotalBorrowShares.Float64())
		fmt.Printf("  %-28s %d\n", "Max Capacity:", bank.Config.MaxCapacity)
		fmt.Printf("  %-28s %s\n", "Pyth Oracle:", bank.Config.PythOracle)
		fmt.Printf("  %-28s %s\n", "Last Update:", time.Unix(bank.LastUpdate, 0).UTC().Format(time.RFC3339))
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
