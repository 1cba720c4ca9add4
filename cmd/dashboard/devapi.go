package main

import (
	"net/http"
	"time"

	"github.com/jrsteele09/acservice-dashboard/devapi"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var devapiCmd = &cobra.Command{
	Use:   "devapi",
	Short: "Serve the in-memory development backend",
	Long: `devapi serves an in-memory backend with seeded accounts and records, for
running the console without the real service.

Seeded accounts (password ` + devapi.SeedPassword + `):
  ` + devapi.SeedAdminEmail + `
  ` + devapi.SeedTechnicianEmail + `
  ` + devapi.SeedCustomerEmail,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.New()
		api, err := devapi.New(c)
		if err != nil {
			return err
		}

		addr := c.GetBindHost() + c.GetDevAPIPort()
		srv := &http.Server{Addr: addr, Handler: api, ReadHeaderTimeout: 10 * time.Second}
		log.Info().Str("base_url", "http://"+addr+devapi.BasePath).Msg("Development backend ready")

		errs := make(chan error, 1)
		go func() { errs <- listenAndServe(srv) }()

		select {
		case err := <-errs:
			return err
		case <-waitForStopSignal():
		}
		return shutdown(srv)
	},
}

func init() {
	rootCmd.AddCommand(devapiCmd)
}
