package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegrid/pkg/config"
	"github.com/matzehuels/sitegrid/pkg/pipeline"
	"github.com/matzehuels/sitegrid/pkg/session"
)

// sessionCommand creates the session command group.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Save and load site configurations",
		Long: `Save and load site configurations.

Sessions live in the store selected by the config file or environment; by
default the CLI keeps them as JSON files under ~/.config/sitegrid/sessions.`,
	}

	cmd.AddCommand(c.sessionSaveCommand())
	cmd.AddCommand(c.sessionGetCommand())
	cmd.AddCommand(c.sessionListCommand())
	cmd.AddCommand(c.sessionPickCommand())

	return cmd
}

// sessionEnv bundles what the session subcommands need.
type sessionEnv struct {
	cfg    config.Config
	runner *pipeline.Runner
	store  session.Store
}

func (e *sessionEnv) Close() {
	e.store.Close()
	e.runner.Close()
}

func (c *CLI) openSessionEnv(ctx context.Context) (*sessionEnv, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Cache = localCache(cfg.Cache, false)

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		runner.Close()
		return nil, err
	}
	return &sessionEnv{cfg: cfg, runner: runner, store: store}, nil
}

// sessionSaveCommand creates the "session save" subcommand.
func (c *CLI) sessionSaveCommand() *cobra.Command {
	var (
		input  string
		colors map[string]string
	)

	cmd := &cobra.Command{
		Use:     "save [device=count ...]",
		Short:   "Save a configuration",
		Example: `  sitegrid session save megapackXL=2 powerPack=4 --color powerPack=#FFAA00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := c.openSessionEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			raw, err := readQuantities(input, cmd.InOrStdin(), args, env.runner.Engine.Catalog())
			if err != nil {
				return err
			}
			cleaned, err := env.runner.Validate(ctx, raw)
			if err != nil {
				return reportInvalid(err)
			}
			doc, err := session.NewDocument(env.runner.Engine.Catalog(), cleaned, colors)
			if err != nil {
				return reportInvalid(err)
			}

			id, err := env.store.Save(ctx, doc)
			if err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			printSuccess("Saved session %s", id)
			printNextStep("Load it with", "sitegrid session get "+id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "read quantities from a JSON file (- for stdin)")
	cmd.Flags().StringToStringVar(&colors, "color", nil, "display color per device, e.g. megapackXL=#2F80ED")
	return cmd
}

// sessionGetCommand creates the "session get" subcommand.
func (c *CLI) sessionGetCommand() *cobra.Command {
	var (
		format    string
		output    string
		scale     int
		noCaption bool
	)

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Load a session and show its layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[format] {
				return fmt.Errorf("invalid format: %s (must be terminal, json, svg, png or pdf)", format)
			}
			ctx := cmd.Context()
			env, err := c.openSessionEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			doc, err := env.store.Get(ctx, args[0])
			if errors.Is(err, session.ErrNotFound) {
				return fmt.Errorf("session %s not found", args[0])
			}
			if err != nil {
				return err
			}
			return c.showSession(ctx, cmd.OutOrStdout(), env, doc, layoutOutput{
				format:    format,
				path:      output,
				scale:     scale,
				noCaption: noCaption,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTerminal, "output format: terminal, json, svg, png, pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout; site.<format> for png/pdf)")
	cmd.Flags().IntVar(&scale, "scale", 0, "SVG pixels per foot")
	cmd.Flags().BoolVar(&noCaption, "no-caption", false, "omit the totals caption from svg, png and pdf output")
	return cmd
}

// showSession recalculates doc and writes it like calc does.
func (c *CLI) showSession(ctx context.Context, w io.Writer, env *sessionEnv, doc *session.Document, out layoutOutput) error {
	res, err := env.runner.Calculate(ctx, doc.Config)
	if err != nil {
		return err
	}
	out.colors = doc.Colors
	if out.format == formatTerminal {
		fmt.Fprintln(w, StyleTitle.Render("Session "+doc.ID)+" "+StyleDim.Render(doc.CreatedAt.Local().Format(time.DateTime)))
		fmt.Fprintln(w)
	}
	return c.writeLayout(ctx, w, env.runner, res, out)
}

// sessionListCommand creates the "session list" subcommand.
func (c *CLI) sessionListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := c.openSessionEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			docs, err := env.store.List(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				if docs == nil {
					docs = []*session.Document{}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"count": len(docs), "items": docs})
			}
			if len(docs) == 0 {
				printInfo("No saved sessions")
				return nil
			}
			fmt.Fprintln(w, sessionTable(docs, env.runner.Engine.Catalog().ProducerIDs()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print sessions as JSON")
	return cmd
}

// sessionTable renders docs with one quantity column per producer.
func sessionTable(docs []*session.Document, producers []string) string {
	headers := append([]string{"ID", "Created"}, producers...)
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		row := []string{d.ID, formatRelativeTime(d.CreatedAt)}
		for _, id := range producers {
			row = append(row, strconv.Itoa(d.Config.Count(id)))
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleValue
			case col == 1:
				return StyleDim
			}
			return StyleNumber
		}).
		Render()
}

// sessionPickCommand creates the "session pick" subcommand.
func (c *CLI) sessionPickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a saved session interactively and show its layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := c.openSessionEnv(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			docs, err := env.store.List(ctx)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				printInfo("No saved sessions")
				printNextStep("Save one with", "sitegrid session save megapackXL=2")
				return nil
			}

			model := NewSessionListModel(docs, env.runner.Engine.Catalog().ProducerIDs())
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("session picker: %w", err)
			}
			picked := final.(SessionListModel).Selected
			if picked == nil {
				return nil
			}
			return c.showSession(ctx, cmd.OutOrStdout(), env, picked, layoutOutput{format: formatTerminal})
		},
	}
}
