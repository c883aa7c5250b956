package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"csvcaster/internal/analyze"
	"csvcaster/mapping"
)

var (
	scaffoldOut     string
	scaffoldFlatten bool
	scaffoldDir     string
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <package> <Type>...",
	Short: "Draft a mapping file from Go struct types",
	Long: `Scaffold loads a Go package and drafts a mapping file entry for each
named struct type from its fields and csv tags. Review the result before
loading it with mapping.Registry.LoadYAML.

Example:
  csvcaster scaffold ./store Order Product --flatten -o mapping.yaml`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if scaffoldOut != "" && scaffoldOut != "-" {
			f, err := os.Create(scaffoldOut)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()

			out = f
		}

		return runScaffold(out, scaffoldDir, args[0], args[1:], analyze.ScaffoldOptions{Flatten: scaffoldFlatten})
	},
}

func init() {
	rootCmd.AddCommand(scaffoldCmd)

	scaffoldCmd.Flags().StringVarP(&scaffoldOut, "out", "o", "", "output file, standard output when empty")
	scaffoldCmd.Flags().BoolVar(&scaffoldFlatten, "flatten", false, "list nested struct columns instead of references")
	scaffoldCmd.Flags().StringVar(&scaffoldDir, "dir", "", "directory the package pattern is resolved from")
}

func runScaffold(out io.Writer, dir, pattern string, typeNames []string, opts analyze.ScaffoldOptions) error {
	analyzer := analyze.NewAnalyzer().InDir(dir)
	if _, err := analyzer.LoadPackages(pattern); err != nil {
		return err
	}

	infos := make([]*analyze.TypeInfo, 0, len(typeNames))

	for _, name := range typeNames {
		info, err := analyzer.GetStruct(name)
		if err != nil {
			return err
		}

		infos = append(infos, info)
	}

	data, err := mapping.Marshal(analyze.ScaffoldFile(infos, opts))
	if err != nil {
		return err
	}

	_, err = out.Write(data)

	return err
}
