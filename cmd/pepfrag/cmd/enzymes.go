package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newEnzymesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enzymes [name...]",
		Short: "List cleavage rules",
		Long: `List the built-in cleavage rules and any loaded with --enzymes.
With names, only those rules are shown and unknown names are an error.`,
		RunE: runEnzymes,
	}
}

type ruleDoc struct {
	Name      string `yaml:"name"`
	Sense     string `yaml:"sense"`
	Residues  string `yaml:"residues"`
	Exception string `yaml:"exception,omitempty"`
}

func runEnzymes(cmd *cobra.Command, args []string) error {
	lib, err := loadEnzymeLibrary()
	if err != nil {
		return err
	}

	rules := lib.Rules()
	if len(args) > 0 {
		rules = rules[:0:0]
		for _, name := range args {
			rule, err := lookupRule(lib, name)
			if err != nil {
				return err
			}
			rules = append(rules, rule)
		}
	}

	rep := report{header: []string{"Name", "Sense", "Residues", "Exception"}}
	docs := make([]ruleDoc, 0, len(rules))
	for _, rule := range rules {
		doc := ruleDoc{
			Name:     rule.Name(),
			Sense:    rule.Sense().String(),
			Residues: rule.Residues(),
		}
		exception := "-"
		if c, ok := rule.Exception(); ok {
			doc.Exception = string(c)
			exception = doc.Exception
		}
		rep.append(doc.Name, doc.Sense, doc.Residues, exception)
		docs = append(docs, doc)
	}
	rep.doc = docs

	if len(args) == 0 && strings.EqualFold(viper.GetString(formatKey), "table") {
		rep.footer = []string{fmt.Sprintf("%d rules", len(rules)), "", "", ""}
	}

	return rep.render(cmd.OutOrStdout(), viper.GetString(formatKey))
}
