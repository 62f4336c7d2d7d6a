package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/KarpelesLab/pjson"
	"github.com/KarpelesLab/webutil"
	"github.com/schollz/progressbar/v3"
	"github.com/smolnetwork/smolnet"
	"github.com/spf13/cobra"
)

// run endpoints of an API from the command line

var (
	envName string
	params  string
	verbose bool
	method  string
	output  string
)

func main() {
	root := &cobra.Command{
		Use:           "smolfetch",
		Short:         "Dispatch REST calls against an environment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				smolnet.Debug = true
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().StringVar(&envName, "env", "", "environment to use (development or production), read from SMOLNET_BASE_URL and SMOLNET_HEADERS if empty")
	root.PersistentFlags().StringVarP(&params, "params", "p", "", "parameters, as JSON or as a url encoded query")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests")

	root.AddCommand(dataCmd("get", smolnet.GET), dataCmd("post", smolnet.POST), dataCmd("delete", smolnet.DELETE), downloadCmd(), uploadCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "smolfetch: %s\n", err)
		os.Exit(1)
	}
}

func dataCmd(use string, verb smolnet.Method) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: "Send a " + string(verb) + " request and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, p, err := setup()
			if err != nil {
				return err
			}
			res := smolnet.Do[smolnet.Document](cmd.Context(), d, &smolnet.Request{URLPath: args[0], Verb: verb, Params: p})
			if err := res.Error(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Value.Raw)
			return nil
		},
	}
}

func downloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "Download a response body into a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, p, err := setup()
			if err != nil {
				return err
			}
			bar := progressbar.Default(100, "downloading")
			res := smolnet.Do[struct{}](cmd.Context(), d, &smolnet.Request{
				URLPath:    args[0],
				Params:     p,
				Mode:       smolnet.Download,
				Expect:     smolnet.File,
				OnProgress: func(f float64) { bar.Set(int(f * 100)) },
			})
			bar.Finish()
			if err := res.Error(); err != nil {
				return err
			}
			fn := res.Path
			if output != "" {
				if err := os.Rename(fn, output); err != nil {
					return err
				}
				fn = output
			}
			fmt.Fprintln(cmd.OutOrStdout(), fn)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "where to move the downloaded file")
	return cmd
}

func uploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <path> <file>",
		Short: "Upload a file and print the JSON response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, p, err := setup()
			if err != nil {
				return err
			}
			slog.InfoContext(cmd.Context(), fmt.Sprintf("Uploading file %s", args[1]), "event", "smolfetch:upload")
			bar := progressbar.Default(100, "uploading")
			res := smolnet.Do[smolnet.Document](cmd.Context(), d, &smolnet.Request{
				URLPath:    args[0],
				Verb:       smolnet.Method(method),
				Params:     p,
				Mode:       smolnet.Upload,
				OnProgress: func(f float64) { bar.Set(int(f * 100)) },
				Body:       smolnet.FilePayload(args[1]),
			})
			bar.Finish()
			if err := res.Error(); err != nil {
				return fmt.Errorf("failed to upload: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Value.Raw)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", "PUT", "HTTP method of the upload")
	return cmd
}

// setup returns the dispatcher for the selected environment and the parsed
// parameters.
func setup() (*smolnet.Dispatcher, smolnet.Param, error) {
	var env smolnet.Environment
	switch envName {
	case "development":
		env = smolnet.Development
	case "production":
		env = smolnet.Production
	case "":
		e, err := smolnet.LoadEnv("SMOLNET")
		if err != nil {
			return nil, nil, err
		}
		env = e
	default:
		return nil, nil, fmt.Errorf("unknown environment %s", envName)
	}

	var p smolnet.Param
	if params != "" {
		if params[0] == '{' {
			// json
			if err := pjson.Unmarshal([]byte(params), &p); err != nil {
				return nil, nil, fmt.Errorf("invalid params: %w", err)
			}
		} else {
			// url encoded
			p = webutil.ParsePhpQuery(params)
		}
	}

	return smolnet.NewDispatcher(env, nil), p, nil
}
