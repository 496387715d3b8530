package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dicomkit/dicomkit/internal/dicom"
)

// NewAnonymizeCmd rewrites a DICOM file against a WriterRules table built
// from repeated --rule flags, plus an optional --default.
func NewAnonymizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anonymize [file]",
		Short: "apply per-element copy/clear/remove/replace rules and rewrite the file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" && len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("file path is required")
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			ruleFlags, _ := cmd.Flags().GetStringArray("rule")
			groupFlags, _ := cmd.Flags().GetStringArray("group-rule")
			defaultFlag, _ := cmd.Flags().GetString("default")
			return runAnonymize(path, out, ruleFlags, groupFlags, defaultFlag)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOM file path ('-' for stdin)")
	pf.String("out", "", "output file path")
	pf.StringArray("rule", nil, "Keyword=Action[:replacement], repeatable")
	pf.StringArray("group-rule", nil, "\"Group Name\"=Action[:replacement], repeatable")
	pf.String("default", "", "default Action[:replacement] for unmatched elements")
	return cmd
}

func runAnonymize(path, out string, ruleFlags, groupFlags []string, defaultFlag string) error {
	f, err := openInput(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	parser := dicom.NewParser()
	result, err := parser.Parse(buf)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	rules := dicom.NewRules(nil)
	for _, spec := range ruleFlags {
		keyword, rule, err := parseRuleSpec(spec)
		if err != nil {
			return err
		}
		rules.ForKeyword(keyword, rule)
	}
	for _, spec := range groupFlags {
		group, rule, err := parseRuleSpec(spec)
		if err != nil {
			return err
		}
		rules.ForGroup(group, rule)
	}
	if defaultFlag != "" {
		rule, err := parseAction(defaultFlag)
		if err != nil {
			return err
		}
		rules.Default(rule)
	}

	writer := dicom.NewWriter(dicom.WithRules(rules))
	preamble := buf[:128]
	output, err := writer.Write(result.Elements, preamble)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return os.WriteFile(out, output, 0o644)
}

// parseRuleSpec splits "Key=Action[:replacement]" into its key and Rule.
func parseRuleSpec(spec string) (string, dicom.Rule, error) {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 {
		return "", dicom.Rule{}, fmt.Errorf("malformed rule %q, expected Key=Action", spec)
	}
	rule, err := parseAction(parts[1])
	return parts[0], rule, err
}

func parseAction(spec string) (dicom.Rule, error) {
	parts := strings.SplitN(spec, ":", 2)
	switch strings.ToLower(parts[0]) {
	case "copy":
		return dicom.Rule{Action: dicom.ActionCopy}, nil
	case "remove":
		return dicom.Rule{Action: dicom.ActionRemove}, nil
	case "clear":
		return dicom.Rule{Action: dicom.ActionClear}, nil
	case "replace":
		if len(parts) != 2 {
			return dicom.Rule{}, fmt.Errorf("replace action requires a value: %q", spec)
		}
		return dicom.Rule{Action: dicom.ActionReplace, Replace: parts[1]}, nil
	default:
		return dicom.Rule{}, fmt.Errorf("unknown action %q", parts[0])
	}
}
