package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/loader"
	"github.com/wippyai/modcache/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <address>::<module>::<struct> [module files...]",
	Short: "Resolve one struct, optionally instantiated with type arguments",
	Example: `  modcache resolve 0x1::Box::T --type-arg u64 -c demo/modcache.toml
  modcache resolve 0x1::Wallet::Pending --type-arg address -c demo/modcache.toml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringSlice("type-arg", nil, "type argument (bool, u64, string, bytearray, address); repeatable")
}

func runResolve(cmd *cobra.Command, args []string) error {
	p, err := newPainter(cmd)
	if err != nil {
		return err
	}
	id, name, err := parseStructPath(args[0])
	if err != nil {
		return err
	}
	rawArgs, _ := cmd.Flags().GetStringSlice("type-arg")
	actuals, err := parseTypeArgs(rawArgs)
	if err != nil {
		return err
	}

	s, err := openSession(cmd, args[1:])
	if err != nil {
		return err
	}
	defer s.close()
	txn := s.transaction()
	defer txn.Discard()

	text, err := resolveStruct(s, txn, id, name, actuals)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.render(nameStyle, args[0])+" = "+p.render(typeStyle, text))
	return nil
}

func parseStructPath(s string) (bytecode.ModuleID, string, error) {
	i := strings.LastIndex(s, "::")
	if i < 0 {
		return bytecode.ModuleID{}, "", fmt.Errorf("invalid struct path %q (want <address>::<module>::<struct>)", s)
	}
	id, err := bytecode.ParseModuleID(s[:i])
	if err != nil {
		return bytecode.ModuleID{}, "", err
	}
	name := s[i+2:]
	if name == "" {
		return bytecode.ModuleID{}, "", fmt.Errorf("invalid struct path %q: empty struct name", s)
	}
	return id, name, nil
}

func parseTypeArgs(raw []string) ([]types.Type, error) {
	out := make([]types.Type, 0, len(raw))
	for _, r := range raw {
		t, err := parseTypeArg(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseTypeArg(s string) (types.Type, error) {
	switch strings.TrimSpace(s) {
	case "bool":
		return types.Bool(), nil
	case "u64":
		return types.U64(), nil
	case "string":
		return types.String(), nil
	case "bytearray":
		return types.ByteArray(), nil
	case "address":
		return types.Address(), nil
	default:
		return types.Type{}, fmt.Errorf("unsupported type argument %q", s)
	}
}

// resolveStruct resolves id::name through cache and instantiates it with actuals.
func resolveStruct(s *session, cache loader.ModuleCache, id bytecode.ModuleID, name string, actuals []types.Type) (string, error) {
	m, err := cache.GetLoadedModule(id)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", fmt.Errorf("module %s is not published", id)
	}
	idx, ok := m.StructDefIndex(name)
	if !ok {
		return "", fmt.Errorf("module %s declares no struct %q", id, name)
	}
	formals := len(m.Module().StructHandleAt(m.Module().StructDefAt(idx).StructHandle).TypeFormals)
	if len(actuals) != formals {
		return "", fmt.Errorf("%s::%s takes %d type arguments, got %d", id, name, formals, len(actuals))
	}

	meter := s.meter()
	def, err := cache.ResolveStructDef(m, idx, meter)
	if err != nil {
		return "", err
	}
	if def == nil {
		return "", fmt.Errorf("%s::%s depends on an unpublished module", id, name)
	}
	inst, err := types.NewTypeContext(actuals).SubstStructDef(def, meter, s.cfg.Gas.TokenCost)
	if err != nil {
		return "", err
	}
	return inst.String(), nil
}
