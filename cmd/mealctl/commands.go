package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"fitmeal/platform/internal/client"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

func (a *app) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout"))
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Long: `Sign in with email and password. The password may also be passed
through the MEALCTL_PASSWORD environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("MEALCTL_PASSWORD")
			}
			if password == "" {
				return errors.New("password is required (--password or MEALCTL_PASSWORD)")
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()

			u, err := c.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget local tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()
			if err := c.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()

			u, err := c.Me(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s> %s\n", u.Name, u.Email, u.Role)
			if u.ProfileImageURL != "" {
				fmt.Fprintf(a.out, "Profile image: %s\n", u.ProfileImageURL)
			}
			return nil
		},
	}
}

func (a *app) customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage a trainer's customers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List customers managed by the signed-in trainer",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()

			customers, err := c.ListCustomers(ctx)
			if err != nil {
				return err
			}
			if len(customers) == 0 {
				fmt.Fprintln(a.out, "No customers yet")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tASSIGNED")
			for _, cu := range customers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cu.ID, cu.Name, cu.Email, cu.AssignedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	})
	return cmd
}

func (a *app) recipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Read recipes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Print a recipe as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()

			r, err := c.GetRecipe(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		},
	})
	return cmd
}

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed-in user's profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "upload-image <file>",
		Short: "Upload a JPEG, PNG or WebP profile image (max 5 MiB)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()

			contentType := mimetype.Detect(data).String()
			url, err := c.UploadProfileImage(ctx, filepath.Base(args[0]), contentType, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Profile image updated: %s\n", url)
			return nil
		},
	})
	return cmd
}

func (a *app) pdfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Download PDF exports",
	}

	var mealPlanID, outputDir string
	var recipeIDs []string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export a meal plan or a set of recipe cards",
		Example: `  mealctl pdf export --meal-plan 652f...
  mealctl pdf export --recipe 6530... --recipe 6531... -o ~/Downloads`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := a.withTimeout(cmd)
			defer cancel()

			f, err := c.ExportPDF(ctx, client.ExportRequest{MealPlanID: mealPlanID, RecipeIDs: recipeIDs})
			if err != nil {
				return err
			}
			path := filepath.Join(outputDir, filepath.Base(f.Filename))
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(f.Data))
			return nil
		},
	}
	export.Flags().StringVar(&mealPlanID, "meal-plan", "", "Assigned meal plan ID")
	export.Flags().StringArrayVar(&recipeIDs, "recipe", nil, "Recipe ID (repeatable)")
	export.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory to write the PDF into")
	export.MarkFlagsMutuallyExclusive("meal-plan", "recipe")
	export.MarkFlagsOneRequired("meal-plan", "recipe")

	cmd.AddCommand(export)
	return cmd
}
