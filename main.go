package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"finshorts-pipeline/assemble"
	"finshorts-pipeline/config"
	"finshorts-pipeline/plan"
	"finshorts-pipeline/research"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "finshorts",
	Short: "Automated financial shorts pipeline: viral tweet in, vertical video out",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is local dev only — CI injects secrets directly
		_ = godotenv.Load()
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: research, script, audio, plan, assemble, upload",
	RunE: func(cmd *cobra.Command, args []string) error {
		noUpload, _ := cmd.Flags().GetBool("no-upload")
		return runPipeline(signalContext(), cfg, noUpload)
	},
}

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Find the most viral finance post and write the tweet report",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Paths.Output
		}
		path, err := research.New(cfg).Run(signalContext(), dir)
		if err != nil {
			return err
		}
		log.Printf("Tweet report: %s", path)
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the production plan from timestamps and the illustration manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := plan.New(cfg).Run()
		if err != nil {
			return err
		}
		log.Printf("Production plan: %s", path)
		return nil
	},
}

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Render the final video from a production plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		planPath, _ := cmd.Flags().GetString("plan")
		outPath, _ := cmd.Flags().GetString("out")
		if planPath == "" {
			planPath = filepath.Join(cfg.Paths.Output, plan.PlanFile)
		}
		if outPath == "" {
			outPath = filepath.Join(cfg.Paths.Output, "final_video.mp4")
		}
		return assemble.New(cfg).Run(signalContext(), planPath, outPath)
	},
}

// signalContext cancels on SIGINT/SIGTERM so a half-finished encode is
// cleaned up instead of leaving a truncated file.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		log.Println("interrupted, shutting down...")
		cancel()
	}()
	return ctx
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	runCmd.Flags().Bool("no-upload", false, "stop after rendering, skip the YouTube upload")
	researchCmd.Flags().String("dir", "", "directory for the tweet report (default: paths.output)")
	assembleCmd.Flags().String("plan", "", "production plan path (default: <paths.output>/production_plan.json)")
	assembleCmd.Flags().String("out", "", "output video path (default: <paths.output>/final_video.mp4)")

	rootCmd.AddCommand(runCmd, researchCmd, planCmd, assembleCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
