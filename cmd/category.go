package cmd

import (
	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/category"
	"github.com/spf13/cobra"
)

var categoryOpts category.CategoryDTO

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "Manage ticket categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if _, err := a.RequireUser(ctx); err != nil {
			return err
		}
		list, err := a.Categories.GetAllCategories(ctx)
		if err != nil {
			return err
		}
		a.println(a.Renderer.CategoryList(list))
		return nil
	}),
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if err := requireAction(a, cmd, auth.ActionManageCategories); err != nil {
			return err
		}
		c, err := a.Categories.CreateCategory(ctx, category.CategoryDTO{Name: args[0], Description: categoryOpts.Description})
		if err != nil {
			return err
		}
		a.printf("Category #%d %s created\n", c.ID, c.Name)
		return nil
	}),
}

var categoriesUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename a category or change its description",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("category id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if err := requireAction(a, cmd, auth.ActionManageCategories); err != nil {
			return err
		}
		current, err := a.Categories.GetCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		dto := category.CategoryDTO{Name: current.Name, Description: current.Description}
		if cmd.Flags().Changed("name") {
			dto.Name = categoryOpts.Name
		}
		if cmd.Flags().Changed("description") {
			dto.Description = categoryOpts.Description
		}

		c, err := a.Categories.UpdateCategory(ctx, id, dto)
		if err != nil {
			return err
		}
		a.ticketsChanged(ctx, 0, "category_updated")
		a.printf("Category #%d %s updated\n", c.ID, c.Name)
		return nil
	}),
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a category that no ticket uses",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *App) error {
		id, err := parseID("category id", args[0])
		if err != nil {
			return err
		}
		ctx, cancel := a.timeout(cmd.Context())
		defer cancel()

		if err := requireAction(a, cmd, auth.ActionManageCategories); err != nil {
			return err
		}
		if err := a.Categories.DeleteCategory(ctx, id); err != nil {
			return err
		}
		a.println("Category deleted")
		return nil
	}),
}

// requireAction restores the session and checks that its user may perform
// action.
func requireAction(a *App, cmd *cobra.Command, action auth.Action) error {
	u, err := a.RequireUser(cmd.Context())
	if err != nil {
		return err
	}
	return a.Permissions.Require(u, action)
}

func init() {
	categoriesCreateCmd.Flags().StringVar(&categoryOpts.Description, "description", "", "what the category covers")
	categoriesUpdateCmd.Flags().StringVar(&categoryOpts.Name, "name", "", "new name")
	categoriesUpdateCmd.Flags().StringVar(&categoryOpts.Description, "description", "", "new description")

	categoriesCmd.AddCommand(categoriesListCmd, categoriesCreateCmd, categoriesUpdateCmd, categoriesDeleteCmd)
}
