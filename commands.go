package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"valentine/api"
	"valentine/config"
	"valentine/configstore"
	"valentine/imageingest"
	"valentine/kvstore"
	"valentine/session"
)

func newRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v; using defaults", err)
		cfg = config.Config{Addr: ":8080", DataDir: "/data", AssetDir: "./public", StoreQuota: kvstore.DefaultQuota, IngestWorkers: imageingest.DefaultWorkers}
	}

	cmd := &cobra.Command{
		Use:   "valentine",
		Short: "Serve a personalised Valentine's greeting.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the saved content bundle")
	cmd.PersistentFlags().Int64Var(&cfg.StoreQuota, "quota", cfg.StoreQuota, "storage quota in bytes (0 for unlimited)")

	addServe(cmd, &cfg)
	addShow(cmd, &cfg)
	addReset(cmd, &cfg)
	return cmd
}

func openStore(cfg *config.Config) (*configstore.Manager, error) {
	kv, err := kvstore.NewDisk(cfg.DataDir, cfg.StoreQuota)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.DataDir, err)
	}
	return configstore.NewManager(kv), nil
}

func addServe(topLevel *cobra.Command, cfg *config.Config) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the greeting web server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			manager := session.NewManager(store, imageingest.NewIngester(cfg.IngestWorkers), "")
			defer manager.Close()
			router := api.RegisterRoutes(manager, staticFiles, os.DirFS(cfg.AssetDir))

			log.Printf("valentine listening on %s (data %s, assets %s)", cfg.Addr, cfg.DataDir, cfg.AssetDir)
			if err := http.ListenAndServe(cfg.Addr, router); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().StringVar(&cfg.AssetDir, "assets", cfg.AssetDir, "directory with photos/ and songs/")
	cmd.Flags().IntVar(&cfg.IngestWorkers, "workers", cfg.IngestWorkers, "images decoded in parallel per upload")
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command, cfg *config.Config) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved content bundle as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.Get())
		},
	})
}

func addReset(topLevel *cobra.Command, cfg *config.Config) {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear every customization and restore the default content.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset clears all customizations; pass --yes to confirm")
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			store.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "content reset to defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	topLevel.AddCommand(cmd)
}
