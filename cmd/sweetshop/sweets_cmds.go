package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop/application/usecase"
	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/domain/session"
)

// browsing and buying need any signed-in account
var browseRequirement = usecase.ShopperRequirement

func (c *cli) sweetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sweets",
		Aliases: []string{"sweet"},
		Short:   "Browse, buy and manage sweets",
	}
	cmd.AddCommand(
		c.sweetsListCmd(),
		c.sweetsSearchCmd(),
		c.sweetsShowCmd(),
		c.sweetsPurchaseCmd(),
		c.sweetsCreateCmd(),
		c.sweetsUpdateCmd(),
		c.sweetsDeleteCmd(),
		c.sweetsRestockCmd(),
	)
	return cmd
}

// guarded wraps a RunE with app construction and a route guard check.
func (c *cli) guarded(req session.Requirement, run func(cmd *cobra.Command, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := c.ensureApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.require(cmd.Context(), app, req); err != nil {
			return err
		}
		if !app.guard.VerifiedFor(req.Path) {
			return errLoginRequired
		}
		return run(cmd, app, args)
	}
}

func (c *cli) sweetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sweets",
		Args:  cobra.NoArgs,
		RunE: c.guarded(browseRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			sweets, err := app.catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.printSweets(sweets)
		}),
	}
}

func (c *cli) sweetsSearchCmd() *cobra.Command {
	var (
		filter             entity.SearchFilter
		minPrice, maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search sweets by name, category or price range",
		Args:  cobra.NoArgs,
		RunE: c.guarded(browseRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			if cmd.Flags().Changed("min-price") {
				filter.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max-price") {
				filter.MaxPrice = &maxPrice
			}
			sweets, err := app.catalog.Search(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return c.printSweets(sweets)
		}),
	}
	cmd.Flags().StringVar(&filter.Name, "name", "", "Name contains")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Category contains")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum price")
	return cmd
}

func (c *cli) sweetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one sweet",
		Args:  cobra.ExactArgs(1),
		RunE: c.guarded(browseRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			sweet, err := app.catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printSweet(sweet)
		}),
	}
}

func (c *cli) sweetsPurchaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchase ID [ID...]",
		Short: "Buy one of each listed sweet",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.guarded(browseRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			sweets, err := app.catalog.Purchase(cmd.Context(), args...)
			if err != nil {
				if len(sweets) > 0 {
					fmt.Fprintf(c.errOut, "Purchased %d of %d before the failure:\n", len(sweets), len(args))
					_ = c.printSweets(sweets)
				}
				return err
			}
			return c.printSweets(sweets)
		}),
	}
}

func (c *cli) sweetsCreateCmd() *cobra.Command {
	var in entity.SweetInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a sweet (admin)",
		Args:  cobra.NoArgs,
		RunE: c.guarded(usecase.AdminRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			sweet, err := app.catalog.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.printSweet(sweet)
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Name")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&in.Quantity, "quantity", 0, "Initial stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (c *cli) sweetsUpdateCmd() *cobra.Command {
	var (
		name, category, description string
		price                       float64
		quantity                    int
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a sweet (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: c.guarded(usecase.AdminRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			var upd entity.SweetUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				upd.Name = &name
			}
			if flags.Changed("category") {
				upd.Category = &category
			}
			if flags.Changed("description") {
				upd.Description = &description
			}
			if flags.Changed("price") {
				upd.Price = &price
			}
			if flags.Changed("quantity") {
				upd.Quantity = &quantity
			}
			sweet, err := app.catalog.Update(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			return c.printSweet(sweet)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().Float64Var(&price, "price", 0, "Unit price")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "Stock level")
	return cmd
}

func (c *cli) sweetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a sweet (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: c.guarded(usecase.AdminRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			if err := app.catalog.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(map[string]string{"deleted": args[0]})
			}
			_, err := fmt.Fprintf(c.out, "Deleted %s\n", args[0])
			return err
		}),
	}
}

func (c *cli) sweetsRestockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restock ID QUANTITY",
		Short: "Add stock to a sweet (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: c.guarded(usecase.AdminRequirement, func(cmd *cobra.Command, app *App, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q is not a whole number", args[1])
			}
			sweet, err := app.catalog.Restock(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}
			return c.printSweet(sweet)
		}),
	}
}
