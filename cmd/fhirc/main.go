package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fhirgen/schemac/internal/compiler"
)

var version = "dev"

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {
	rootCmd := newRootCmd()
	return rootCmd.Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fhirc",
		Short: "fhirc compiles FHIR StructureDefinitions into a typed Go package",
		Long: `fhirc reads a directory of FHIR conformance resources
(StructureDefinition, ValueSet, CodeSystem) and generates a standalone Go
package of structs, enums, and accessor/mutator methods — one file per
definition, laid out by resource family.`,
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("fhirc version %s\n", version)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Go package from FHIR StructureDefinitions",
		Long:  `Generate Go structs, enums, and traits from a directory of FHIR conformance resources.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schemaDir, err := cmd.Flags().GetString("schema")
			if err != nil {
				return fmt.Errorf("failed to get schema flag: %w", err)
			}
			outputDir, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("failed to get output flag: %w", err)
			}
			packageName, err := cmd.Flags().GetString("package")
			if err != nil {
				return fmt.Errorf("failed to get package flag: %w", err)
			}
			modulePrefix, err := cmd.Flags().GetString("module")
			if err != nil {
				return fmt.Errorf("failed to get module flag: %w", err)
			}
			withSerde, err := cmd.Flags().GetBool("serde")
			if err != nil {
				return fmt.Errorf("failed to get serde flag: %w", err)
			}
			emitProfiles, err := cmd.Flags().GetBool("profiles")
			if err != nil {
				return fmt.Errorf("failed to get profiles flag: %w", err)
			}

			fmt.Printf("Loading schema from %s...\n", schemaDir)

			p := compiler.NewPipeline(compiler.Config{
				SchemaDir:    schemaDir,
				OutputDir:    outputDir,
				PackageName:  packageName,
				ModulePrefix: modulePrefix,
				WithSerde:    withSerde,
				EmitProfiles: emitProfiles,
			})

			result, err := p.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			for _, w := range result.SchemaWarnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			for _, w := range result.WriteWarnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			fmt.Printf("Generated %d record(s) and %d enum(s) to %s\n", result.RecordCount, result.EnumCount, outputDir)
			return nil
		},
	}

	cmd.Flags().String("schema", "./schema", "Path to FHIR conformance resources")
	cmd.Flags().String("output", "./fhir", "Output directory for the generated package")
	cmd.Flags().String("package", "fhir-generated", "Generated package display name")
	cmd.Flags().String("module", "", "Go module import path prefix for the generated package (defaults to --package)")
	cmd.Flags().Bool("serde", true, "Emit JSON struct tags on every generated field")
	cmd.Flags().Bool("profiles", true, "Emit a record for every classified profile, not just core resources")

	return cmd
}
