package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/internal/transport"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Upload and fetch patient documents",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireAuth()
	},
}

var (
	uploadPatient string
	uploadName    string
)

var documentsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Attach a file to a patient record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if uploadPatient == "" {
			return fmt.Errorf("--patient is required")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		doc, err := a.api.UploadDocument(cmd.Context(), uploadPatient, filepath.Base(args[0]), f, uploadName)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Uploaded " + doc.FileName))
		fmt.Println(kv("ID", doc.ID))
		return nil
	},
}

var listPatient string

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a patient's documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if listPatient == "" {
			return fmt.Errorf("--patient is required")
		}
		docs, err := a.api.PatientDocuments(cmd.Context(), listPatient)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println(faintStyle.Render("No documents."))
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%s  %s\n", d.ID, d.FileName)
		}
		return nil
	},
}

var documentOut string

var documentsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download one document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := a.api.DownloadDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return saveBlob(blob, documentOut)
	},
}

// saveBlob writes a downloaded payload to out, defaulting to the
// server-supplied filename in the working directory.
func saveBlob(blob *transport.Blob, out string) error {
	if out == "" {
		out = blob.Name
	}
	if out == "" {
		out = "download.bin"
	}
	if err := os.WriteFile(out, blob.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("Saved %s (%d bytes)", out, len(blob.Data))))
	return nil
}

func init() {
	documentsUploadCmd.Flags().StringVar(&uploadPatient, "patient", "", "patient record id")
	documentsUploadCmd.Flags().StringVar(&uploadName, "name", "", "stored name (defaults to the file's name)")
	documentsListCmd.Flags().StringVar(&listPatient, "patient", "", "patient record id")
	documentsDownloadCmd.Flags().StringVarP(&documentOut, "out", "o", "", "output path")

	documentsCmd.AddCommand(documentsUploadCmd, documentsListCmd, documentsDownloadCmd)
}
