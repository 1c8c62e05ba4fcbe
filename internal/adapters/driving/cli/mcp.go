package cli

import (
	"errors"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/mcp"
)

var (
	mcpPort  int
	mcpHost  string
	mcpIndex bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the index to AI assistants",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over the Model Context Protocol",
	Long: `Serve search_documents, recent_documents and list_sources to an MCP client,
over stdio by default or over streamable HTTP with --port. --index also
exposes index_source, which connects the Telegram session when first called.

Client configuration:
  {"mcpServers": {"tgindex": {"command": "tgindex", "args": ["mcp", "serve"]}}}`,
	Example: `  tgindex mcp serve
  tgindex mcp serve --port 8080 --index`,
	RunE: runMCPServe,
}

func init() {
	flags := mcpServeCmd.Flags()
	flags.IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	flags.StringVar(&mcpHost, "host", "localhost", "interface the HTTP server binds to")
	flags.BoolVar(&mcpIndex, "index", false, "expose the index_source tool")

	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Documents: documentService,
		Sources:   sourceRegistry,
		UserID:    userID,
	}
	if mcpIndex {
		if indexer == nil || sessionRunner == nil {
			return errors.New("indexing needs the telegram session to be configured")
		}
		ports.Indexer = indexer
		ports.Session = mcp.SessionRunner(sessionRunner)
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
