package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/coffee-shop/internal/api/dto"
	"github.com/spec-kit/coffee-shop/internal/domain"
)

// SeedFile is the YAML fixture layout read by the seed command.
type SeedFile struct {
	Drinks []dto.CreateDrinkRequest `yaml:"drinks"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(_ *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed --file drinks.yaml",
		Short: "Insert drinks from a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			drinks, err := LoadSeed(f)
			if err != nil {
				return err
			}

			a, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Migrate(cmd.Context()); err != nil {
				return err
			}
			created, err := a.Drinks.Seed(cmd.Context(), drinks)
			for _, d := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", d.ID, d.Title)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a top-level drinks list")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// LoadSeed decodes a seed fixture. Validation happens when the drinks are created.
func LoadSeed(r io.Reader) ([]domain.Drink, error) {
	var doc SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	drinks := make([]domain.Drink, 0, len(doc.Drinks))
	for _, d := range doc.Drinks {
		drinks = append(drinks, domain.Drink{Title: d.Title, Recipe: d.Recipe})
	}
	return drinks, nil
}
