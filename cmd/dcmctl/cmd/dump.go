package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dicomkit/dicomkit/internal/dicom"
)

// NewDumpCmd prints every element of a DICOM file, one per line, or as
// JSON.
func NewDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "dump every element in a DICOM file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" && len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("file path is required")
			}
			asJSON, _ := cmd.Flags().GetBool("json")

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

			if asJSON {
				elems := result.Elements.Elements()
				enc := json.NewEncoder(os.Stdout)
				return enc.Encode(elems)
			}
			fmt.Print(dicom.Dump(result.Elements))
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOM file path ('-' for stdin)")
	pf.Bool("json", false, "emit elements as JSON instead of text")
	return cmd
}
