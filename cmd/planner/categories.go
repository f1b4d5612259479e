package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-planner/internal/category"
	"github.com/Veraticus/spice-planner/internal/cli"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
		Long: `List the category taxonomy, add and edit custom categories, merge or delete them,
and review how each category is used.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(mergeCategoriesCmd())
	cmd.AddCommand(categoryStatsCmd())
	cmd.AddCommand(suggestCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			cats, err := a.engine.Categories().List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(cats))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := category.NewCategory{Name: args[0]}
			in.ParentID, _ = cmd.Flags().GetString("parent")
			in.Color, _ = cmd.Flags().GetString("color")
			in.Icon, _ = cmd.Flags().GetString("icon")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			cat, err := a.engine.Categories().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %q (%s)", cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().String("parent", "", "ID of the parent category")
	cmd.Flags().String("color", "", "display color as #RRGGBB")
	cmd.Flags().String("icon", "", "icon name")
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a custom category",
		Long:  `Rename, re-parent or restyle a custom category. Pass --parent "" to move it to the top level.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes category.Changes
			for flag, target := range map[string]**string{
				"name":   &changes.Name,
				"parent": &changes.ParentID,
				"color":  &changes.Color,
				"icon":   &changes.Icon,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*target = &v
				}
			}
			if changes == (category.Changes{}) {
				return fmt.Errorf("nothing to update; pass --name, --parent, --color or --icon")
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			cat, err := a.engine.Categories().Update(cmd.Context(), args[0], changes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %q", cat.Name)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("parent", "", "ID of the new parent category")
	cmd.Flags().String("color", "", "display color as #RRGGBB")
	cmd.Flags().String("icon", "", "icon name")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a custom category",
		Long:  `Delete a custom category. A category still in use needs --reassign-to.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reassignTo, _ := cmd.Flags().GetString("reassign-to")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.Categories().Delete(cmd.Context(), args[0], reassignTo); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
			return nil
		},
	}

	cmd.Flags().String("reassign-to", "", "move the category's transactions here before deleting")
	return cmd
}

func mergeCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge SOURCE TARGET",
		Short: "Merge one custom category into another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			moved, err := a.engine.Categories().Merge(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Merged %s into %s, %d transactions moved", args[0], args[1], moved)))
			return nil
		},
	}
}

func statsWindow(cmd *cobra.Command) (model.DateRange, error) {
	days, _ := cmd.Flags().GetInt("days")
	if days < 1 {
		return model.DateRange{}, fmt.Errorf("--days must be at least 1")
	}
	return model.LastDays(time.Now(), days), nil
}

func categoryStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how each category is used",
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := statsWindow(cmd)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.engine.Categories().UsageStatistics(cmd.Context(), window)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderUsage(stats))
			return nil
		},
	}

	cmd.Flags().IntP("days", "d", 365, "window used to rate how often a category is used")
	return cmd
}

func suggestCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest taxonomy clean-ups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := statsWindow(cmd)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			suggestions, err := a.engine.Categories().Suggestions(cmd.Context(), window)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSuggestions(suggestions))
			return nil
		},
	}

	cmd.Flags().IntP("days", "d", 365, "window used to rate how often a category is used")
	return cmd
}
