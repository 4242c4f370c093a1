package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eringen/pinblob/scaffold"
)

// scaffoldData holds the template variables passed to every init template.
type scaffoldData struct {
	SiteName      string
	Driver        string
	SessionSecret string
}

var (
	initDriver string
	initName   string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter .env for a new gallery",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return runInit(dir)
	},
}

func init() {
	initCmd.Flags().StringVar(&initDriver, "driver", "vercel", "storage driver: vercel, s3, gcs or local")
	initCmd.Flags().StringVar(&initName, "name", "PinBlob", "site name")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

func runInit(dir string) error {
	switch initDriver {
	case "vercel", "s3", "gcs", "local":
	default:
		return fmt.Errorf("unknown driver %q", initDriver)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("generate session secret: %w", err)
	}
	data := scaffoldData{
		SiteName:      initName,
		Driver:        initDriver,
		SessionSecret: hex.EncodeToString(secret),
	}

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}
		if _, err := os.Stat(outPath); err == nil && !initForce {
			color.Yellow("  skipped %s (exists, use --force)", outPath)
			return nil
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}

		color.Green("  created %s", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  fill in ADMIN_EMAIL, ADMIN_PASSWORD and the storage credential in .env")
	fmt.Println("  pinblob check-token")
	fmt.Println("  pinblob serve")
	return nil
}
