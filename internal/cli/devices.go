package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	"github.com/matzehuels/sitegrid/pkg/render"
)

// devicesCommand creates the devices command.
func (c *CLI) devicesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the device catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			engine, err := newEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cat := engine.Catalog()

			if asJSON {
				data, err := json.MarshalIndent(cat.All(), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deviceTable(cat))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

// deviceTable renders cat as a bordered table, one row per device with a
// swatch in its default color.
func deviceTable(cat *catalog.Catalog) string {
	specs := cat.All()
	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, []string{
			"  ",
			spec.ID,
			spec.Name,
			fmt.Sprintf("%d×%d ft", spec.WidthFt, spec.DepthFt),
			strconv.Itoa(cat.ColumnSpan(spec)),
			render.FormatMWh(spec.EnergyMWh),
			render.FormatCost(spec.CostUSD),
			string(spec.Category),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Footprint", "Cols", "MWh", "Cost", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(specs) {
				return lipgloss.NewStyle()
			}
			spec := specs[row]
			switch col {
			case 0:
				if spec.Color != "" {
					return lipgloss.NewStyle().Background(lipgloss.Color(spec.Color))
				}
			case 1:
				return StyleTitle
			case 4, 5, 6:
				return StyleNumber
			case 7:
				if !spec.IsProducer() {
					return StyleDim
				}
			}
			return StyleValue
		}).
		Render()
}
