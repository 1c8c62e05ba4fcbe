package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect indexed files",

	Annotations: map[string]string{annotationOffline: "true"},
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show everything known about an indexed file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many files are indexed",
	Args:  cobra.NoArgs,
	RunE:  runDocumentCount,
}

func init() {
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentCountCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), userID, args[0])
	if err != nil {
		return failure("failed to get document", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:     %s\n", doc.FileName)
	cmd.Printf("  Type:     %s\n", doc.FileType)
	cmd.Printf("  Size:     %s\n", humanSize(doc.FileSize))
	if doc.MIMEType != "" {
		cmd.Printf("  MIME:     %s\n", doc.MIMEType)
	}
	cmd.Printf("  Source:   %s\n", doc.SourceName)
	cmd.Printf("  Message:  %d in chat %d\n", doc.Origin.MessageID, doc.Origin.ChatID)
	cmd.Printf("  Posted:   %s\n", doc.PostedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Indexed:  %s\n", doc.IndexedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Hash:     %s\n", doc.Hash)
	if doc.Text != "" {
		cmd.Println()
		cmd.Println(doc.Text)
	}
	return nil
}

func runDocumentCount(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	n, err := documentService.Count(cmd.Context(), userID)
	if err != nil {
		return failure("counting documents", err)
	}
	cmd.Printf("%d file(s) indexed.\n", n)
	return nil
}
