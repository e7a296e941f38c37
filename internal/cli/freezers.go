package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/freezers/internal/imageview"
	"github.com/idilsaglam/freezers/internal/model"
	"github.com/idilsaglam/freezers/internal/ui"
)

func (c *command) lsCmd() *cobra.Command {
	var limit, offset int
	var all bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List freezer ids, one page at a time",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 || offset < 0 {
				return usagef(errors.New("limit and offset must not be negative"))
			}
			if limit == 0 {
				limit = c.settings.PageSize
			}
			cl, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}

			var ids []string
			if all {
				ids, err = cl.Freezers(cmd.Context())
			} else {
				ids, err = cl.FreezersBy(cmd.Context(), limit, offset)
			}
			if err != nil {
				return err
			}

			t := ui.Current()
			header := fmt.Sprintf("%s  %s %d", t.Title.Render("Freezers"), t.Accent.Render("shown"), len(ids))
			lines := []string{header, ""}
			if len(ids) == 0 {
				lines = append(lines, t.Muted.Render("no freezers"))
			}
			for i, id := range ids {
				lines = append(lines, fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("%3d.", offset+i+1)), id))
			}
			if !all && len(ids) == limit {
				lines = append(lines, "", t.Muted.Render(fmt.Sprintf("more: freezers ls --offset %d", offset+limit)))
			}
			ui.Panel(c.stdout, "", lines)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "ids per page (default --page-size)")
	cmd.Flags().IntVar(&offset, "offset", 0, "ids to skip")
	cmd.Flags().BoolVar(&all, "all", false, "list every id in one request")
	return cmd
}

func (c *command) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a freezer and its products",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			f, err := cl.Freezer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printFreezer(model.NewDraft(f))
			return nil
		},
	}
}

func (c *command) printFreezer(d model.Draft) {
	t := ui.Current()
	owner := d.OwnerOrEmpty()
	if owner == "" {
		owner = t.Muted.Render("None")
	}
	lines := ui.Fields([]ui.Field{
		{Label: "owner", Value: owner},
		{Label: "model", Value: d.Model.Name},
		{Label: "year", Value: strconv.FormatUint(uint64(d.Model.Year), 10)},
	})
	lines = append(lines, "", t.Accent.Render("PRODUCTS"))
	if len(d.Lines) == 0 {
		lines = append(lines, t.Muted.Render("  (none)"))
	}
	rows := make([]ui.Field, len(d.Lines))
	for i, l := range d.Lines {
		rows[i] = ui.Field{Label: "  " + l.Product, Value: strconv.FormatUint(uint64(l.Amount), 10)}
	}
	lines = append(lines, ui.Fields(rows)...)
	ui.Panel(c.stdout, d.Name, lines)
}

func (c *command) imageCmd() *cobra.Command {
	var out string
	var cols int
	cmd := &cobra.Command{
		Use:   "image <id>",
		Short: "Save a freezer's image, or draw it in the terminal",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cols <= 0 {
				return usagef(fmt.Errorf("cols must be positive, got %d", cols))
			}
			cl, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			b, err := cl.ImageBytes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
				ui.OK(c.stdout, fmt.Sprintf("saved %d bytes to %s", len(b), out))
				return nil
			}
			art, err := imageview.Preview(b, cols, cols/2)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, art)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the raw image to this file")
	cmd.Flags().IntVar(&cols, "cols", 60, "width of the terminal rendering")
	return cmd
}

// parseLine reads a name=qty product argument.
func parseLine(s string) (model.Line, error) {
	name, qty, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return model.Line{}, fmt.Errorf("product %q: want name=qty", s)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(qty), 10, 0)
	if err != nil {
		return model.Line{}, fmt.Errorf("product %q: quantity is not a number", s)
	}
	return model.Line{Product: name, Amount: uint(n)}, nil
}

func (c *command) setCmd() *cobra.Command {
	var owner, modelName string
	var year uint
	var products []string
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a freezer's owner, model, year or product quantities",
		Example: `  freezers set f-1 --owner alice --year 2015
  freezers set f-1 --product milk=3 --product peas=0
  freezers set f-1 --owner ""     # clear the owner`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("owner") && !flags.Changed("model") && !flags.Changed("year") && len(products) == 0 {
				return usagef(errors.New("nothing to change"))
			}
			if flags.Changed("year") && !model.ValidYear(year) {
				return usagef(fmt.Errorf("year must be between %d and %d", model.MinYear, model.MaxYear()))
			}
			if flags.Changed("model") && strings.TrimSpace(modelName) == "" {
				return usagef(errors.New("model name cannot be empty"))
			}
			lines := make([]model.Line, 0, len(products))
			for _, p := range products {
				l, err := parseLine(p)
				if err != nil {
					return usagef(err)
				}
				lines = append(lines, l)
			}

			ctx := cmd.Context()
			cl, err := c.connect(ctx)
			if err != nil {
				return err
			}
			f, err := cl.Freezer(ctx, args[0])
			if err != nil {
				return err
			}
			d := model.NewDraft(f)

			if flags.Changed("owner") {
				d.Owner = nil
				if owner != "" {
					d.Owner = &owner
				}
			}
			if flags.Changed("model") {
				d.Model.Name = modelName
			}
			if flags.Changed("year") {
				d.Model.Year = year
			}
			for _, l := range lines {
				if i := d.IndexOf(l.Product); i >= 0 {
					d.Lines[i].Amount = l.Amount
					continue
				}
				p, err := cl.Product(ctx, l.Product)
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("Not found product `%s`", l.Product)
				}
				d.Lines = append(d.Lines, model.Line{Product: p.Name, Amount: l.Amount})
			}

			updated, err := cl.UpdateFreezer(ctx, d.Freezer())
			if err != nil {
				return err
			}
			if updated == nil {
				return errors.New(unauthorized)
			}
			c.log.Info().Str("id", updated.Name).Msg("freezer updated")
			ui.OK(c.stdout, fmt.Sprintf("updated `%s`", updated.Name))
			c.printFreezer(model.NewDraft(*updated))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "new owner; empty clears it")
	cmd.Flags().StringVar(&modelName, "model", "", "new model name")
	cmd.Flags().UintVar(&year, "year", 0, "new model year")
	cmd.Flags().StringArrayVar(&products, "product", nil, "set a product quantity, name=qty (repeatable)")
	return cmd
}

func (c *command) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a freezer",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := cl.DeleteFreezer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(unauthorized)
			}
			c.log.Info().Str("id", args[0]).Msg("freezer deleted")
			ui.OK(c.stdout, fmt.Sprintf("deleted `%s`", args[0]))
			return nil
		},
	}
}

func (c *command) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Look up a catalog product",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			p, err := cl.Product(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("Not found product `%s`", args[0])
			}
			ui.Panel(c.stdout, p.Name, ui.Fields([]ui.Field{
				{Label: "default", Value: strconv.FormatUint(uint64(p.Default), 10)},
			}))
			return nil
		},
	}
}
