package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mandrel",
		Short: "Composite pressure vessel geometry engine",
	}

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(typesCmd())
	rootCmd.AddCommand(evalCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var segments int
	var parallel bool
	var exactBoss bool

	cmd := &cobra.Command{
		Use:   "build [request.yaml]",
		Short: "Assemble the full multi-layer model and write it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBuild(args[0], segments, parallel, exactBoss)
		},
	}

	cmd.Flags().IntVar(&segments, "segments", 0, "override revolution segments")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "revolve the layers concurrently")
	cmd.Flags().BoolVar(&exactBoss, "exact-boss", false, "cut the fittings with the solid kernel")
	return cmd
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics [request.yaml]",
		Short: "Compute the summary scalars without generating meshes",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMetrics(args[0])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [request.yaml]",
		Short: "Check a tank request without building it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the construction families and their layer stacks",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTypes()
		},
	}
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval [script.zy]",
		Short: "Evaluate a tank DSL script and write the model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runEval(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (default $PORT, then 8080)")
	return cmd
}
