package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mmverify",
	Short: "Metamath proof database verifier",
	Long: `mmverify is a Go implementation of a Metamath proof verifier.

It checks a .mm database against the Metamath formal-proof rules:
  - Statement and scope well-formedness ($c, $v, $f, $e, $d, $a, $p)
  - Reverse-Polish reconstruction of every expression via the syntax
    axioms
  - Proof-step decoding (regular and compressed) and execution
  - Definition soundness (the six df- rules)
  - Propositional validity of the connectives a database defines

It does not implement proof search; that stays an external
collaborator driven through the internal/search contract.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
