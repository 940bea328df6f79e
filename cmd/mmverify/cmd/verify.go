package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mm-go/verifier/internal/errors"
	"github.com/mm-go/verifier/internal/verifier"
	"github.com/spf13/cobra"
)

var (
	sectionFlag            string
	checkPropositionalFlag bool
	jsonFlag               bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file> [<section-title-prefix>]",
	Short: "Verify a Metamath proof database",
	Long: `Verify reads a .mm database and checks it end to end: statement and
scope well-formedness, proof execution, syntax-tree reconstruction,
definition soundness, and (optionally) propositional validity.

Examples:
  # Verify an entire database
  mmverify verify set.mm

  # Stop reading at a named section
  mmverify verify set.mm --section "Predicate calculus"

  # Also check propositional validity of every propositional theorem
  mmverify verify set.mm --check-propositional

  # Emit a machine-readable report
  mmverify verify set.mm --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&sectionFlag, "section", "", "stop reading at the first section-heading comment matching this prefix")
	verifyCmd.Flags().BoolVar(&checkPropositionalFlag, "check-propositional", false, "check satisfiability of every recognised propositional theorem")
	verifyCmd.Flags().BoolVar(&jsonFlag, "json", false, "emit a machine-readable JSON report instead of text")
}

// report is the --json shape: a small, hand-written struct rather than a
// dynamic document, since nothing downstream needs schema-free JSON.
type report struct {
	OK                    bool     `json:"ok"`
	Assertions            int      `json:"assertions"`
	Definitions           int      `json:"definitions"`
	DefinitionFailures    []string `json:"definition_failures,omitempty"`
	PropctorFailures      []string `json:"propctor_failures,omitempty"`
	PropositionalFailures []string `json:"propositional_failures,omitempty"`
	IncompleteProofs      []string `json:"incomplete_proofs,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	path := args[0]

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	section := sectionFlag
	if len(args) > 1 {
		section = args[1]
	}

	var opts []verifier.Option
	if section != "" {
		opts = append(opts, verifier.WithSection(section))
	}
	if checkPropositionalFlag {
		opts = append(opts, verifier.WithPropositionalCheck(true))
	}
	if verbose {
		opts = append(opts, verifier.WithProgress(func(phase string, fraction float64) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", fraction*100, phase)
		}))
	}

	res, err := verifier.Verify(os.DirFS(dir), base, opts...)
	if err != nil {
		if diag, ok := err.(*errors.Diagnostic); ok {
			fmt.Fprint(os.Stderr, diag.Format(true))
			fmt.Fprintln(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return fmt.Errorf("verification aborted")
	}

	if jsonFlag {
		if err := printJSONReport(res); err != nil {
			return err
		}
	} else {
		printTextReport(res, path)
	}

	if !res.OK() {
		return fmt.Errorf("%d propositional failure(s)", len(res.PropositionalFailures))
	}
	return nil
}

func printTextReport(res *verifier.Result, path string) {
	fmt.Printf("%s: %d assertions, %d accepted definitions\n", path, len(res.DB.Assertions), len(res.Definitions))

	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s: %s\n", w.Label, w.Message)
	}
	for _, msg := range res.CommentWarnings {
		fmt.Printf("  warning: %s\n", msg)
	}
	for _, d := range res.DefinitionFailures {
		fmt.Fprint(os.Stdout, d.Format(false))
	}
	for _, e := range res.PropctorFailures {
		fmt.Printf("  propositional: %v\n", e)
	}
	for _, d := range res.PropositionalFailures {
		fmt.Fprint(os.Stdout, d.Format(false))
	}

	if res.OK() {
		fmt.Println("OK")
	} else {
		fmt.Println("FAILED")
	}
}

func printJSONReport(res *verifier.Result) error {
	rep := report{
		OK:          res.OK(),
		Assertions:  len(res.DB.Assertions),
		Definitions: len(res.Definitions),
	}
	for _, d := range res.DefinitionFailures {
		rep.DefinitionFailures = append(rep.DefinitionFailures, d.Error())
	}
	for _, e := range res.PropctorFailures {
		rep.PropctorFailures = append(rep.PropctorFailures, e.Error())
	}
	for _, d := range res.PropositionalFailures {
		rep.PropositionalFailures = append(rep.PropositionalFailures, d.Error())
	}
	for _, w := range res.Warnings {
		rep.IncompleteProofs = append(rep.IncompleteProofs, w.Label)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
