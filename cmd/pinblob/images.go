package main

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/eringen/pinblob"
	"github.com/eringen/pinblob/storage"
)

var (
	uploadContentType string
	deleteYes         bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored images, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image to the configured store",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <pathname>",
	Short: "Delete an image from the configured store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "type", "", "content type (default: from the file extension)")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
}

func openGateway(cmd *cobra.Command) (*storage.Gateway, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return pinblob.OpenGateway(cmd.Context(), cfg, nil, cliLogger())
}

func runList(cmd *cobra.Command, args []string) error {
	gw, err := openGateway(cmd)
	if err != nil {
		return err
	}
	defer gw.Close()

	images, err := gw.ListImages(cmd.Context())
	if err != nil {
		return err
	}
	if len(images) == 0 {
		color.Yellow("No images in %s store.", gw.Driver())
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("63"))).
		Headers("PATHNAME", "SIZE", "UPLOADED", "URL")
	for _, img := range images {
		uploaded := ""
		if img.UploadedAt != nil {
			uploaded = humanize.Time(*img.UploadedAt)
		}
		size := ""
		if img.Size > 0 {
			size = humanize.IBytes(uint64(img.Size))
		}
		t.Row(img.Pathname, size, uploaded, img.URL)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	fmt.Fprintf(cmd.OutOrStdout(), "%d images\n", len(images))
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	contentType := uploadContentType
	if contentType == "" {
		contentType, err = detectContentType(f)
		if err != nil {
			return err
		}
	}

	// Validate before connecting so a bad file never needs credentials.
	if err := storage.ValidateUpload(info.Size(), contentType); err != nil {
		return err
	}

	gw, err := openGateway(cmd)
	if err != nil {
		return err
	}
	defer gw.Close()

	bar := progressbar.DefaultBytes(info.Size(), "uploading "+filepath.Base(path))
	body := progressbar.NewReader(f, bar)
	img, err := gw.UploadImage(cmd.Context(), storage.Upload{
		Body:        &body,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
	})
	if err != nil {
		return err
	}
	color.Green("✓ Uploaded %s", img.Pathname)
	fmt.Fprintln(cmd.OutOrStdout(), img.URL)
	return nil
}

// detectContentType uses the extension, then sniffs the first bytes.
func detectContentType(f *os.File) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(f.Name())); ct != "" {
		return ct, nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	pathname := args[0]
	if !deleteYes {
		ok := false
		prompt := &survey.Confirm{Message: fmt.Sprintf("Delete %s?", pathname)}
		if err := survey.AskOne(prompt, &ok); err != nil {
			return err
		}
		if !ok {
			color.Yellow("Aborted.")
			return nil
		}
	}

	gw, err := openGateway(cmd)
	if err != nil {
		return err
	}
	defer gw.Close()

	if err := gw.DeleteImage(cmd.Context(), pathname); err != nil {
		return err
	}
	color.Green("✓ Deleted %s", pathname)
	return nil
}
