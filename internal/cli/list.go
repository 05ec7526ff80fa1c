package cli

import (
	"fmt"

	"github.com/jmylchreest/glazecat/internal/colour"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/spf13/cobra"
)

type listOptions struct {
	missing bool
}

func newListCmd(a *app) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sampled colours with terminal previews",
		Long: `List the records of each category's colours CSV with both sampled
colours. Colour previews are shown when stdout is a terminal.

Examples:
  glazecat list --category underglaze

  # Records whose image could not be downloaded or sampled
  glazecat list --missing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.missing, "missing", false, "only list records without colours")
	return cmd
}

func runList(cmd *cobra.Command, a *app, opts *listOptions) error {
	categories, err := a.selected()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, cat := range categories {
		records, err := dataset.LoadColors(cat.ColoursCSV)
		if err != nil {
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}

		table := NewTable([]string{"CODE", "NAME", "LEFT", "TOP"})
		table.SetColumnMaxWidth(1, 40)
		for _, r := range records {
			if opts.missing == r.Complete() {
				continue
			}
			table.AddRow([]string{r.Code, r.Name, swatch(r.Left), swatch(r.Top)})
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%s): %d of %d records\n\n", cat.Name, cat.Title, table.Len(), len(records))
		if table.Len() > 0 {
			fmt.Fprint(out, table.Render())
		}
	}
	return nil
}

// swatch formats an optional colour as a preview block and hex code.
func swatch(c *colour.RGB) string {
	if c == nil {
		return "-"
	}
	if colour.DisableColourOutput {
		return c.Hex()
	}
	return colour.FormatColourWithPreview(*c, 4)
}

// labelledSwatch renders the hex code on top of the colour.
func labelledSwatch(c *colour.RGB) string {
	if c == nil {
		return "-"
	}
	if colour.DisableColourOutput {
		return c.Hex()
	}
	return colour.ColourPreviewWithText(*c, c.Hex(), 9)
}
