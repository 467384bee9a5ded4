// se CLI - project tooling for se programs
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/sealang/se/compiler"
	"github.com/sealang/se/manifest"
	"github.com/sealang/se/statestore"
	"github.com/sealang/se/vm"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	projectDir := flag.String("C", ".", "Project directory (or any directory under it)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: se [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  check                        Parse the project entry file and report errors\n")
		fmt.Fprintf(os.Stderr, "  tokens <file>                Dump the token stream of a source file\n")
		fmt.Fprintf(os.Stderr, "  state list                   Print all persisted state values\n")
		fmt.Fprintf(os.Stderr, "  state get <name>             Print one persisted state value\n")
		fmt.Fprintf(os.Stderr, "  state set <name> <kind> <v>  Store a state value (kind: u8, u128, string, bool)\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  se check                     # Check the project in the current directory\n")
		fmt.Fprintf(os.Stderr, "  se -C examples/token check   # Check a project elsewhere\n")
		fmt.Fprintf(os.Stderr, "  se tokens src/main.se        # Show what the lexer produces\n")
		fmt.Fprintf(os.Stderr, "  se state set supply u128 50000000000000\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "check":
		err = runCheck(*projectDir, *verbose)
	case "tokens":
		if len(args) < 2 {
			err = errors.New("tokens: missing file argument")
		} else {
			err = runTokens(args[1])
		}
	case "state":
		err = runState(*projectDir, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadManifest finds the project manifest starting at dir.
func loadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no se.toml found in %s or any parent directory", dir)
	}
	return m, nil
}

func runCheck(dir string, verbose bool) error {
	m, err := loadManifest(dir)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Project: %s %s\n", m.Project.Name, m.Project.Version)
		fmt.Printf("Entry:   %s\n", m.EntryPath())
	}

	root, err := m.ParseEntry()
	if err != nil {
		return err
	}

	for _, block := range root.Blocks {
		switch b := block.(type) {
		case *compiler.Define:
			schemes := 0
			if b.Schemes != nil {
				schemes = len(b.Schemes.Items)
			}
			fmt.Printf("define: version %q, %d scheme(s)\n", b.Version, schemes)
		case *compiler.State:
			fmt.Printf("state: %d variable(s)\n", len(b.Vars))
		case *compiler.Consts:
			fmt.Printf("consts: %d declaration(s)\n", len(b.Decls))
		case *compiler.Procedures:
			fmt.Printf("procedures: %d statement(s)\n", len(b.Body))
		}
	}
	fmt.Println("OK")
	return nil
}

func runTokens(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lexer := compiler.NewLexer(string(src), filepath.Dir(path))
	for {
		tok := lexer.NextToken()
		fmt.Printf("%s  %s\n", tok.Pos, tok)
		if tok.Type == compiler.TokenEOF || tok.Type == compiler.TokenError {
			break
		}
	}
	return nil
}

func runState(dir string, args []string) error {
	if len(args) == 0 {
		return errors.New("state: missing subcommand (list, get, set)")
	}

	m, err := loadManifest(dir)
	if err != nil {
		return err
	}
	store, err := statestore.Open(m.StatePath())
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "list":
		state, err := store.LoadAll()
		if err != nil {
			return err
		}
		for name, v := range state {
			fmt.Printf("%s = %s\n", name, v)
		}
		return nil

	case "get":
		if len(args) < 2 {
			return errors.New("state get: missing name")
		}
		v, err := store.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil

	case "set":
		if len(args) < 4 {
			return errors.New("state set: need <name> <kind> <value>")
		}
		v, err := parseValueArg(args[2], args[3])
		if err != nil {
			return err
		}
		return store.Put(args[1], v)

	default:
		return fmt.Errorf("state: unknown subcommand %s", args[0])
	}
}

// parseValueArg builds a Value from its CLI kind tag and text form.
func parseValueArg(kind, text string) (vm.Value, error) {
	switch strings.ToLower(kind) {
	case "u8":
		var n uint8
		if _, err := fmt.Sscanf(text, "%d", &n); err != nil {
			return vm.Value{}, fmt.Errorf("invalid u8 %q: %w", text, err)
		}
		return vm.Uint8Value(n), nil
	case "u128":
		u, err := vm.ParseUint128(text)
		if err != nil {
			return vm.Value{}, err
		}
		return vm.Uint128Value(u), nil
	case "string":
		return vm.StringValue(text), nil
	case "bool":
		switch text {
		case "true":
			return vm.BoolValue(true), nil
		case "false":
			return vm.BoolValue(false), nil
		}
		return vm.Value{}, fmt.Errorf("invalid bool %q", text)
	default:
		return vm.Value{}, fmt.Errorf("unknown kind %q (want u8, u128, string, bool)", kind)
	}
}
