// cmd/tools/catalog-updater/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scholarship-tracker/internal/models"
	"scholarship-tracker/pkg/catalog"
)

var catalogPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog-updater",
		Short:         "Maintain the document category catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&catalogPath, "path", "configs/catalog.json", "Path to catalog file")

	root.AddCommand(newInitCmd(), newValidateCmd(), newSetCmd(), newShowCmd())
	return root
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in catalog to --path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(catalogPath); err == nil && !force {
				return fmt.Errorf("%s already exists, pass --force to overwrite", catalogPath)
			}
			cat := catalog.Default()
			if err := save(cat, catalogPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d categories to %s\n", len(cat.Categories), catalogPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return fmt.Errorf("catalog validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog validation passed. Found %d categories.\n", len(cat.Categories))
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	var key, field, value string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update one field of a category",
		Example: `  catalog-updater set --key cv --field displayName --value "CV / Resume"
  catalog-updater set --key english --field maxFileSize --value 5242880`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			if err := updateCategory(cat, key, field, value); err != nil {
				return err
			}
			if err := cat.Validate(); err != nil {
				return err
			}
			if err := save(cat, catalogPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s, field %s to %s\n", key, field, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Category key (cv, lor, sop, others, english, transcript)")
	cmd.Flags().StringVar(&field, "field", "", "Field to update")
	cmd.Flags().StringVar(&value, "value", "", "New value for the field")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the categories in catalog order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version %s\n", cat.Version)
			for _, c := range cat.Categories {
				fmt.Fprintf(out, "%-11s %-28s %s\n", c.Key, c.DisplayName, c.PresentationKey)
			}
			return nil
		},
	}
}

// updateCategory applies one field edit in place.
func updateCategory(cat *catalog.Catalog, key, field, value string) error {
	k, err := models.ParseCategoryKey(key)
	if err != nil {
		return err
	}
	for i := range cat.Categories {
		c := &cat.Categories[i]
		if c.Key != k {
			continue
		}
		switch field {
		case "displayName":
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("displayName cannot be empty")
			}
			c.DisplayName = value
		case "description":
			c.Description = value
		case "presentationKey":
			c.PresentationKey = models.PresentationKey(value)
		case "maxFileSize":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid maxFileSize value: %q", value)
			}
			c.MaxFileSize = n
		case "allowedTypes":
			c.AllowedTypes = splitList(value)
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		return nil
	}
	return fmt.Errorf("category %s not found in catalog", key)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func save(cat *catalog.Catalog, path string) error {
	cat.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := cat.Save(path); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
