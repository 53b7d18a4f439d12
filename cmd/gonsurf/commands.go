package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/catalog"
	"github.com/2x3systems/gonsurf/libnsurf/enumerate"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// session holds the settings shared by all subcommands of one invocation.
type session struct {
	cfg        RunConfig
	configPath string
	refresh    bool
	timeout    time.Duration
	cat        *catalog.Catalog
}

func newRootCmd() *cobra.Command {
	sess := &session{
		cfg: DefaultRunConfig(),
	}

	root := &cobra.Command{
		Use:           "gonsurf",
		Short:         "Enumerates normal and almost-normal surfaces of 3-manifold triangulations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return sess.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&sess.configPath, "config", "", "yaml run config file")
	pf.StringVar(&sess.cfg.Catalog, "catalog", "", "catalog db path")
	pf.IntVarP(&sess.cfg.Jobs, "jobs", "j", sess.cfg.Jobs, "number of triangulations processed at once")
	pf.StringSliceVar(&sess.cfg.Samples, "sample", nil, "named sample triangulation (one-tet, figure8, gieseking, s3, lst123, twisted-kxi)")

	root.AddCommand(
		newEnumerateCmd(sess),
		newFindCmd(sess),
		newCatalogCmd(sess),
	)
	return root
}

func addEnumFlags(cmd *cobra.Command, sess *session) {
	f := cmd.Flags()
	f.StringVarP(&sess.cfg.Coords, "coords", "c", sess.cfg.Coords, "coordinate system (quad, standard, almost-normal)")
	f.StringVar(&sess.cfg.Which, "which", sess.cfg.Which, "vertex, fundamental or one-of")
	f.StringVarP(&sess.cfg.Algorithm, "algorithm", "a", sess.cfg.Algorithm, "default, tree or dd")
	f.StringVar(&sess.cfg.Constraints, "constraints", sess.cfg.Constraints, "comma separated: euler-positive, euler-zero, non-spun")
	f.StringVar(&sess.cfg.Ban, "ban", sess.cfg.Ban, "none, boundary, edge or torus-boundary")
	f.IntVar(&sess.cfg.Edge, "edge", sess.cfg.Edge, "edge index for --ban=edge")
	f.IntVar(&sess.cfg.CoefficientBits, "bits", sess.cfg.CoefficientBits, "cap on tableau coefficient bit length (0 for none)")
	f.StringVar(&sess.cfg.Timeout, "timeout", sess.cfg.Timeout, "cancel each run after this long (e.g. 30s)")
}

// resolve overlays the config file under the flags the user set explicitly.
func (sess *session) resolve(cmd *cobra.Command) error {
	if len(sess.configPath) > 0 {
		file := DefaultRunConfig()
		if err := LoadRunConfig(sess.configPath, &file); err != nil {
			return err
		}

		cfg := &sess.cfg
		overlay := map[string]func(){
			"catalog":     func() { cfg.Catalog = file.Catalog },
			"jobs":        func() { cfg.Jobs = file.Jobs },
			"coords":      func() { cfg.Coords = file.Coords },
			"which":       func() { cfg.Which = file.Which },
			"algorithm":   func() { cfg.Algorithm = file.Algorithm },
			"constraints": func() { cfg.Constraints = file.Constraints },
			"ban":         func() { cfg.Ban = file.Ban },
			"edge":        func() { cfg.Edge = file.Edge },
			"bits":        func() { cfg.CoefficientBits = file.CoefficientBits },
			"timeout":     func() { cfg.Timeout = file.Timeout },
		}
		for name, apply := range overlay {
			if !cmd.Flags().Changed(name) {
				apply()
			}
		}
		cfg.Samples = append(file.Samples, cfg.Samples...)
		cfg.Triangulations = append(file.Triangulations, cfg.Triangulations...)
	}

	var err error
	if sess.timeout, err = sess.cfg.TimeoutDuration(); err != nil {
		return err
	}
	if sess.cfg.Jobs < 1 {
		sess.cfg.Jobs = 1
	}
	return nil
}

func (sess *session) openCatalog(readOnly bool) error {
	if len(sess.cfg.Catalog) == 0 {
		if readOnly {
			return errors.Wrap(gonsurf.ErrBadCatalogParam, "--catalog is required")
		}
		return nil
	}
	var err error
	sess.cat, err = catalog.Open(catalog.Opts{
		DbPathName: sess.cfg.Catalog,
		ReadOnly:   readOnly,
	})
	return err
}

func (sess *session) closeCatalog() {
	if sess.cat != nil {
		if err := sess.cat.Close(); err != nil {
			klog.Warningf("catalog close: %v", err)
		}
		sess.cat = nil
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// forEach runs fn on each input triangulation, at most cfg.Jobs at once, and writes each
// run's output to out in input order.
func (sess *session) forEach(cmd *cobra.Command, args []string, fn func(ctx context.Context, label string, T *tri.Triangulation, out io.Writer) error) error {
	inputs, err := sess.cfg.Inputs(args)
	if err != nil {
		return err
	}

	outputs := make([]bytes.Buffer, len(inputs))
	grp, ctx := errgroup.WithContext(cmd.Context())
	grp.SetLimit(sess.cfg.Jobs)

	for i, T := range inputs {
		T := T
		label := fmt.Sprint(i)
		out := &outputs[i]
		grp.Go(func() error {
			runCtx := ctx
			if sess.timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(ctx, sess.timeout)
				defer cancel()
			}
			return fn(runCtx, label, T, out)
		})
	}
	err = grp.Wait()

	for i := range outputs {
		cmd.OutOrStdout().Write(outputs[i].Bytes())
	}
	return err
}

// cancelOnDone sets the returned flag once ctx is done.
func cancelOnDone(ctx context.Context) (*atomic.Bool, func() bool) {
	flag := &atomic.Bool{}
	stop := context.AfterFunc(ctx, func() {
		flag.Store(true)
	})
	return flag, stop
}

func newEnumerateCmd(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enumerate [gluing list...]",
		Short: "Lists the vertex solutions of each triangulation",
		Long: `Each triangulation is given as a gluing list such as "1: 0.0 0 (1023), 0.3 0 (0132)"
and its solutions are printed one per line as <input>,<index>,<vector>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := sess.cfg.EnumOpts()
			if err != nil {
				return err
			}
			if err = sess.openCatalog(false); err != nil {
				return err
			}
			defer sess.closeCatalog()

			return sess.forEach(cmd, args, func(ctx context.Context, label string, T *tri.Triangulation, out io.Writer) error {
				return sess.enumerateOne(ctx, label, T, opts, out)
			})
		},
	}
	addEnumFlags(cmd, sess)
	cmd.Flags().BoolVar(&sess.refresh, "refresh", false, "enumerate again even if the catalog holds an answer")
	return cmd
}

func (sess *session) enumerateOne(ctx context.Context, label string, T *tri.Triangulation, opts gonsurf.EnumOpts, out io.Writer) error {
	stream := gonsurf.NewSolutionStream()
	printed := stream.Print(nopCloser{out}, label)
	count := make(chan int)
	go func() {
		count <- printed.PullAll()
	}()

	var cached uuid.UUID
	var run *catalog.Run
	var err error
	if sess.cat != nil {
		found := false
		if !sess.refresh {
			cached, found, err = sess.cat.Lookup(T, opts)
		}
		if err == nil && !found {
			run, err = sess.cat.BeginRun(T, opts)
		}
	}

	start := time.Now()
	switch {
	case err != nil:
	case cached != uuid.Nil:
		var surfaces []*normal.Surface
		_, surfaces, err = sess.cat.LoadSolutions(cached)
		for _, S := range surfaces {
			stream.Emit(S)
		}
	default:
		flag, stop := cancelOnDone(ctx)
		opts.Cancel = flag

		var sink gonsurf.Sink = stream
		if run != nil {
			sink = gonsurf.SinkFunc(func(S gonsurf.Solution) {
				run.Emit(S)
				stream.Emit(S)
			})
		}
		err = enumerate.Enumerate(T, opts, sink)
		stop()
	}
	stream.Close()
	n := <-count

	if run != nil {
		if commitErr := run.Commit(err); err == nil {
			err = commitErr
		}
	}

	source := "enumerated"
	if cached != uuid.Nil {
		source = "catalog " + cached.String()
	}
	klog.V(1).Infof("%s: %d solutions in %v (%s)", label, n, time.Since(start), source)
	if err != nil {
		fmt.Fprintf(out, "# %s: %d solutions, stopped: %v\n", label, n, err)
		return errors.Wrapf(err, "triangulation %s", label)
	}
	fmt.Fprintf(out, "# %s: %d solutions\n", label, n)
	return nil
}

func newFindCmd(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [gluing list...]",
		Short: "Finds one non-trivial vertex solution of each triangulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := sess.cfg.EnumOpts()
			if err != nil {
				return err
			}
			opts.Which = gonsurf.WhichOneOf

			return sess.forEach(cmd, args, func(ctx context.Context, label string, T *tri.Triangulation, out io.Writer) error {
				flag, stop := cancelOnDone(ctx)
				defer stop()
				runOpts := opts
				runOpts.Cancel = flag

				S, err := enumerate.FindOne(T, runOpts)
				if err != nil {
					fmt.Fprintf(out, "%s,error,%v\n", label, err)
					return errors.Wrapf(err, "triangulation %s", label)
				}
				if S == nil {
					fmt.Fprintf(out, "%s,none\n", label)
				} else {
					fmt.Fprintf(out, "%s,%s\n", label, S.String())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&sess.cfg.Coords, "coords", "c", sess.cfg.Coords, "coordinate system (standard or almost-normal)")
	cmd.Flags().StringVar(&sess.cfg.Timeout, "timeout", sess.cfg.Timeout, "cancel each search after this long (e.g. 30s)")
	return cmd
}

func newCatalogCmd(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspects a catalog of past runs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the runs held in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.openCatalog(true); err != nil {
				return err
			}
			defer sess.closeCatalog()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %d runs, %d solutions\n", sess.cat.NumRuns(), sess.cat.NumSolutions())
			return sess.cat.SelectRuns(func(rec *catalog.RunRecord) bool {
				id, _ := uuid.FromBytes(rec.RunID)
				fmt.Fprintf(out, "%v,%v,%v,%d,%v,%s,%q\n",
					id,
					gonsurf.Coords(rec.Coords),
					gonsurf.Algorithm(rec.Algorithm),
					rec.NumSolutions,
					time.Duration(rec.DurationNanos),
					rec.Outcome,
					rec.Triangulation,
				)
				return true
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <run id>...",
		Short: "Prints the solutions of one or more runs, each distinct vector once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, len(args))
			for i, arg := range args {
				var err error
				if ids[i], err = uuid.Parse(arg); err != nil {
					return errors.Wrapf(gonsurf.ErrInvalidArgument, "run id %q", arg)
				}
			}
			if err := sess.openCatalog(true); err != nil {
				return err
			}
			defer sess.closeCatalog()

			seen := catalog.NewLSMSet()
			defer seen.Close()

			stream := gonsurf.NewSolutionStream()
			printed := stream.AddTo(seen).Print(nopCloser{cmd.OutOrStdout()}, "")

			var err error
			go func() {
				defer stream.Close()
				for _, id := range ids {
					var surfaces []*normal.Surface
					if _, surfaces, err = sess.cat.LoadSolutions(id); err != nil {
						return
					}
					for _, S := range surfaces {
						stream.Emit(S)
					}
				}
			}()
			printed.PullAll()
			return err
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
