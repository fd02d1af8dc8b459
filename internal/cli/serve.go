package cli

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/contentqc/internal/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve content checks over HTTP",
	Long: `Serve starts the HTTP API:

  POST /v1/check    check a draft
  POST /v1/improve  check (or reuse a report) and rewrite a draft
  POST /v1/refine   run the improve-and-rescore loop
  GET  /healthz     liveness probe

Example:
  contentqc serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	_ = viper.BindPFlag("api.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	fmt.Fprintf(os.Stderr, "contentqc %s listening on %s\n", Version, s.cfg.API.Addr)
	server := api.New(s.checker, s.cfg.API, s.logger)
	return server.Run(cmd.Context())
}
