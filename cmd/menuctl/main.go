package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/danmuck/menuqr/internal/capacity"
	"github.com/danmuck/menuqr/internal/config"
	"github.com/danmuck/menuqr/internal/editor"
	"github.com/danmuck/menuqr/internal/ledger"
	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/logging"
	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/protocol"
	"github.com/danmuck/menuqr/internal/provenance"
	"github.com/danmuck/menuqr/internal/qr"
	"github.com/rs/zerolog/log"
)

const usage = `usage: menuctl <command> [flags]

commands:
  encode    build a shareable link from a menu file
  decode    print the menu carried by a link or token
  inspect   reveal the address embedded in a link's provenance metadata
  validate  check a menu file against the import schema
  upgrade   convert a v1 menu file to v2
  history   list links recorded in the ledger
`

var errUsage = errors.New("invalid usage")

func main() {
	config.LoadEnv()
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "menuctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode":
		return runEncode(ctx, rest, stdout, stderr)
	case "decode":
		return runDecode(rest, stdout, stderr)
	case "inspect":
		return runInspect(ctx, rest, stdout, stderr)
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "upgrade":
		return runUpgrade(ctx, rest, stdout, stderr)
	case "history":
		return runHistory(ctx, rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("menuctl "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "menuctl config path (default "+defaultConfigPath+" when present)")
	return fs, cfgPath
}

func resolveConfig(path string) (cliConfig, error) {
	if strings.TrimSpace(path) == "" {
		return loadCLIConfig(defaultConfigPath, false)
	}
	return loadCLIConfig(path, true)
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func runEncode(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cfgPath := newFlagSet("encode", stderr)
	in := fs.String("in", menu.ExportFileName, "menu file to encode")
	qrOut := fs.String("qr", "", "write the QR code PNG to this path when the link fits")
	ip := fs.String("ip", "", "embed this address instead of looking it up")
	offline := fs.Bool("offline", false, "skip the address lookup and embed the sentinel")
	placement := fs.String("placement", "", "token placement: fragment | query (overrides config)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := resolveConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *placement != "" {
		p, err := link.ParsePlacement(*placement)
		if err != nil {
			return err
		}
		cfg.Placement = p
	}
	viewer, err := cfg.viewerURL()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read menu: %w", err)
	}

	var resolver provenance.Resolver = provenance.NewHTTPResolver(cfg.IPLookupURL, cfg.IPLookupTimeout)
	switch {
	case *offline:
		resolver = provenance.StaticResolver("")
	case *ip != "":
		resolver = provenance.StaticResolver(*ip)
	}

	pub := editor.NewPublisher(provenance.NewStamper(resolver), editor.PublisherConfig{
		ViewerURL: viewer,
		Placement: cfg.Placement,
	})
	defer pub.Close()
	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
		pub.AddSink(store.Recorder(ctx))
	}

	state, err := editor.NewState(menu.V1)
	if err != nil {
		return err
	}
	session := editor.NewSession(state, pub)
	if _, err := session.Do(ctx, editor.ImportMenu{Data: data}); err != nil {
		return err
	}
	session.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	res, ok := session.Latest()
	if !ok {
		return errors.New("encode did not complete")
	}
	if res.Outcome == capacity.Empty {
		fmt.Fprintln(stderr, res.Outcome.Message())
		return protocol.ErrEmptyToken
	}

	fmt.Fprintf(stdout, "link: %s\n", res.URL)
	fmt.Fprintf(stdout, "length: %d\n", len([]rune(res.URL)))
	fmt.Fprintf(stdout, "capacity: %s\n", res.Outcome)
	fmt.Fprintf(stdout, "version: %s\n", res.Version)
	fmt.Fprintf(stdout, "cycle: %s\n", res.CycleID)

	if !res.Outcome.QRAllowed() {
		fmt.Fprintln(stderr, res.Outcome.Message())
		return nil
	}
	if *qrOut != "" {
		png, err := qr.RenderLink(qr.NewPNGRenderer(cfg.QRSize), res.URL)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*qrOut, png, 0o644); err != nil {
			return fmt.Errorf("write qr: %w", err)
		}
		log.Info().Str("path", *qrOut).Int("bytes", len(png)).Msg("qr_written")
	}
	return nil
}

type decodedView struct {
	Version string               `json:"version"`
	Menu    menu.Menu            `json:"menu"`
	Meta    *provenance.Metadata `json:"meta,omitempty"`
}

func decodeArg(fs *flag.FlagSet) (protocol.Envelope, error) {
	if fs.NArg() != 1 {
		return protocol.Envelope{}, fmt.Errorf("%s: expected one link or token argument", fs.Name())
	}
	token, err := link.Extract(fs.Arg(0))
	if err != nil {
		return protocol.Envelope{}, err
	}
	env, err := protocol.Decode(token)
	if err != nil {
		var cle *protocol.CorruptLinkError
		if errors.As(err, &cle) {
			log.Debug().Str("step", cle.Step).Err(cle.Err).Msg("decode_failed")
		}
		return protocol.Envelope{}, protocol.ErrCorruptLink
	}
	return env, nil
}

func runDecode(args []string, stdout, stderr io.Writer) error {
	fs, _ := newFlagSet("decode", stderr)
	out := fs.String("out", "", "also export the menu to this file (e.g. "+menu.ExportFileName+")")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	env, err := decodeArg(fs)
	if err != nil {
		return err
	}

	view := decodedView{Version: env.Version().String(), Menu: env.Menu}
	if !env.Meta.IsZero() {
		view.Meta = &env.Meta
	}
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return err
	}

	if *out != "" {
		data, err := menu.Export(env.Menu)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}

func runInspect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cfgPath := newFlagSet("inspect", stderr)
	id := fs.Int64("id", 0, "inspect the ledger entry with this id instead of a link")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var meta provenance.Metadata
	if *id > 0 {
		store, err := openLedger(*cfgPath)
		if err != nil {
			return err
		}
		defer store.Close()
		entry, err := store.Get(ctx, *id)
		if err != nil {
			return err
		}
		meta = entry.Meta()
	} else {
		env, err := decodeArg(fs)
		if err != nil {
			return err
		}
		meta = env.Meta
	}
	if meta.IsZero() {
		return errors.New("link carries no provenance metadata")
	}
	address, err := meta.Reveal()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ts: %s\n", meta.Timestamp)
	fmt.Fprintf(stdout, "address: %s\n", address)
	return nil
}

func runValidate(args []string, stdout, stderr io.Writer) error {
	fs, _ := newFlagSet("validate", stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path := menu.ExportFileName
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read menu: %w", err)
	}
	m, err := menu.Parse(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok: %s menu, %d sections, %d items\n", m.Version, len(m.Sections), m.ItemCount())
	return nil
}

func runUpgrade(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, _ := newFlagSet("upgrade", stderr)
	in := fs.String("in", menu.ExportFileName, "v1 menu file")
	out := fs.String("out", "", "output path (default: stdout)")
	title := fs.String("title", "", "title for the upgraded menu")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read menu: %w", err)
	}

	state, err := editor.NewState(menu.V1)
	if err != nil {
		return err
	}
	session := editor.NewSession(state, nil)
	cmds := []editor.Command{editor.ImportMenu{Data: data}, editor.UpgradeMenu{}}
	if *title != "" {
		cmds = append(cmds, editor.SetTitle{Title: *title})
	}
	for _, cmd := range cmds {
		if _, err := session.Do(ctx, cmd); err != nil {
			return err
		}
	}
	exported, err := menu.Export(session.State().Menu)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err := fmt.Fprintln(stdout, string(exported))
		return err
	}
	return os.WriteFile(*out, exported, 0o644)
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cfgPath := newFlagSet("history", stderr)
	limit := fs.Int("limit", ledger.DefaultListLimit, "maximum entries to list")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	store, err := openLedger(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tISSUED\tVERSION\tLENGTH\tCAPACITY\tCYCLE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", strconv.FormatInt(e.ID, 10), e.Timestamp, e.Version, e.LinkLen, e.Outcome, e.CycleID)
	}
	return tw.Flush()
}

func openLedger(cfgPath string) (*ledger.Store, error) {
	cfg, err := resolveConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.LedgerPath == "" {
		return nil, errors.New("no ledger_path configured")
	}
	return ledger.Open(cfg.LedgerPath)
}
