package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/spf13/cobra"
)

type productFlags struct {
	adminapi.Product
	specs map[string]string
}

func (p *productFlags) register(cmd *cobra.Command) fieldFlags {
	fs := cmd.Flags()
	fs.StringVar(&p.Name, "name", "", "Product name")
	fs.StringVar(&p.Description, "description", "", "Description")
	fs.StringVar(&p.Category, "category", "", "Category")
	fs.StringVar(&p.Brand, "brand", "", "Brand")
	fs.StringVar(&p.PowerType, "power-type", "", "Power type, e.g. Cordless (Battery)")
	fs.StringVar(&p.SKU, "sku", "", "Stock keeping unit")
	fs.Float64Var(&p.Price, "price", 0, "Price")
	fs.IntVar(&p.Stock, "stock", 0, "Units in stock")
	fs.StringSliceVar(&p.Images, "image", nil, "Image URL, repeatable")
	fs.StringToStringVar(&p.specs, "spec", nil, "Specification key=value, repeatable")

	return fieldFlags{
		"name":        {field: "name", value: func() any { return p.Name }},
		"description": {field: "description", value: func() any { return p.Description }},
		"category":    {field: "category", value: func() any { return p.Category }},
		"brand":       {field: "brand", value: func() any { return p.Brand }},
		"power-type":  {field: "powerType", value: func() any { return p.PowerType }},
		"sku":         {field: "sku", value: func() any { return p.SKU }},
		"price":       {field: "price", value: func() any { return p.Price }},
		"stock":       {field: "stock", value: func() any { return p.Stock }},
		"image":       {field: "images", value: func() any { return p.Images }},
		"spec":        {field: "specifications", value: func() any { return specifications(p.specs) }},
	}
}

func specifications(m map[string]string) []adminapi.Specification {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	specs := make([]adminapi.Specification, 0, len(keys))
	for _, k := range keys {
		specs = append(specs, adminapi.Specification{Key: k, Value: m[k]})
	}
	return specs
}

func newProductsCommand(a *app) *cobra.Command {
	productsCmd := requireGuard(&cobra.Command{
		Use:   "products",
		Short: "Manage the product catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}, guardAuth)

	var params adminapi.ListParams
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.api.Products.List(cmd.Context(), params)
			if err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), page)
		},
	}
	addListFlags(listCmd, &params, "Filter by category")

	var (
		created     productFlags
		createFlags fieldFlags
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return edit(cmd, adminapi.Product{}, createFlags, func(ctx context.Context, p adminapi.Product) error {
				saved, err := a.api.Products.Create(ctx, p)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), saved)
			})
		},
	}
	createFlags = created.register(createCmd)

	var (
		updated     productFlags
		updateFlags fieldFlags
	)
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, err := a.api.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			return edit(cmd, *existing, updateFlags, func(ctx context.Context, p adminapi.Product) error {
				saved, err := a.api.Products.Update(ctx, args[0], p)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), saved)
			})
		},
	}
	updateFlags = updated.register(updateCmd)

	productsCmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.api.Products.Get(cmd.Context(), args[0])
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), p)
			},
		},
		createCmd,
		updateCmd,
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.api.Products.Delete(cmd.Context(), args[0]); err != nil {
					return describe(err)
				}
				cmd.Printf("Deleted product %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "categories",
			Short: "List product categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				categories, err := a.api.Products.Categories(cmd.Context())
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), categories)
			},
		},
		&cobra.Command{
			Use:   "stock <id> <units>",
			Short: "Set the stock level of a product",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				units, err := strconv.Atoi(args[1])
				if err != nil || units < 0 {
					return fmt.Errorf("units must be a whole number of 0 or more, got %q", args[1])
				}
				p, err := a.api.Products.UpdateStock(cmd.Context(), args[0], units)
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), p)
			},
		},
	)
	return productsCmd
}
