package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/config"
)

var demoCmd = &cobra.Command{
	Use:   "demo <dir>",
	Short: "Write a sample module set and configuration into dir",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	cfg := config.Default()
	for _, m := range demoModules() {
		name := m.SelfID().Name + ".mv"
		raw, err := m.Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		cfg.State.Modules = append(cfg.State.Modules, name)
	}

	path := filepath.Join(dir, "modcache.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := cfg.Encode(f); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d modules and %s\n", len(cfg.State.Modules), path)
	fmt.Fprintf(cmd.OutOrStdout(), "try: modcache inspect -c %s\n", path)
	return nil
}

var demoAddr = bytecode.MustParseAddress("0x1")

// demoModules returns Vector, Box, Coin and Wallet. Wallet and Coin refer to
// 0x1::Bank, which is deliberately left unpublished.
func demoModules() []*bytecode.CompiledModule {
	vec := bytecode.NewModuleBuilder(bytecode.CoreAddress, "Vector")
	vec.DefineNativeStruct("T", bytecode.KindAll)

	box := bytecode.NewModuleBuilder(demoAddr, "Box")
	boxT, _ := box.DefineStruct("T", []bytecode.Kind{bytecode.KindAll}, bytecode.Field("value", bytecode.TypeParameter(0)))
	box.DefineFunction("make", bytecode.FlagPublic, bytecode.FunctionSignature{
		TypeFormals: []bytecode.Kind{bytecode.KindAll},
		ArgTypes:    []bytecode.SignatureToken{bytecode.TypeParameter(0)},
		ReturnTypes: []bytecode.SignatureToken{bytecode.Struct(boxT, bytecode.TypeParameter(0))},
	}, bytecode.Ret())

	coin := bytecode.NewModuleBuilder(demoAddr, "Coin")
	vecT := coin.StructHandle(coin.ModuleHandle(bytecode.CoreAddress, "Vector"), "T", bytecode.KindAll)
	makeFn := coin.FunctionHandle(coin.ModuleHandle(demoAddr, "Box"), "make", bytecode.FunctionSignature{
		TypeFormals: []bytecode.Kind{bytecode.KindAll},
	})
	depositFn := coin.FunctionHandle(coin.ModuleHandle(demoAddr, "Bank"), "deposit", bytecode.FunctionSignature{})
	coinT, _ := coin.DefineStruct("Coin", nil, bytecode.Field("value", bytecode.U64()))
	coin.DefineStruct("Purse", nil,
		bytecode.Field("coins", bytecode.Struct(vecT, bytecode.Struct(coinT))),
		bytecode.Field("owner", bytecode.AddressToken()))
	coin.DefineFunction("mint", bytecode.FlagPublic, bytecode.FunctionSignature{
		ArgTypes:    []bytecode.SignatureToken{bytecode.U64()},
		ReturnTypes: []bytecode.SignatureToken{bytecode.Struct(coinT)},
	}, bytecode.Call(makeFn), bytecode.Ret())
	coin.DefineFunction("split", bytecode.FlagPublic, bytecode.FunctionSignature{
		ArgTypes: []bytecode.SignatureToken{bytecode.MutableReference(bytecode.Struct(coinT)), bytecode.U64()},
	}, bytecode.Call(depositFn), bytecode.Ret())

	wallet := bytecode.NewModuleBuilder(demoAddr, "Wallet")
	purse := wallet.StructHandle(wallet.ModuleHandle(demoAddr, "Coin"), "Purse")
	boxed := wallet.StructHandle(wallet.ModuleHandle(demoAddr, "Box"), "T", bytecode.KindAll)
	receipt := wallet.StructHandle(wallet.ModuleHandle(demoAddr, "Bank"), "Receipt")
	wallet.DefineStruct("Wallet", nil,
		bytecode.Field("purse", bytecode.Struct(purse)),
		bytecode.Field("nonce", bytecode.Struct(boxed, bytecode.U64())))
	wallet.DefineStruct("Pending", []bytecode.Kind{bytecode.KindAll},
		bytecode.Field("item", bytecode.Struct(boxed, bytecode.TypeParameter(0))),
		bytecode.Field("receipt", bytecode.Struct(receipt)))

	return []*bytecode.CompiledModule{vec.Build(), box.Build(), coin.Build(), wallet.Build()}
}
