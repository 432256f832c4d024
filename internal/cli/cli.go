package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/yiblet/clippy/internal/clipboard"
	"github.com/yiblet/clippy/internal/clipboard/sysboard"
	"github.com/yiblet/clippy/internal/clipfs"
	"github.com/yiblet/clippy/internal/config"
	"github.com/yiblet/clippy/internal/daemon"
	"github.com/yiblet/clippy/internal/history"
	"github.com/yiblet/clippy/internal/logging"
	"github.com/yiblet/clippy/internal/store"
	"github.com/yiblet/clippy/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	fs        *clipfs.ClipFS
	configs   *config.ConfigManager
	manager   *history.Manager
	clipboard clipboard.Clipboard
	log       zerolog.Logger

	in  io.Reader
	out io.Writer
	now func() time.Time
}

// Option configures a CLI.
type Option func(*CLI)

// WithIO redirects the prompt input and the command output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *CLI) {
		c.in = in
		c.out = out
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(clip clipboard.Clipboard) Option {
	return func(c *CLI) {
		c.clipboard = clip
	}
}

// WithLogger sets the logger shared with the stores and the daemon.
func WithLogger(log zerolog.Logger) Option {
	return func(c *CLI) {
		c.log = log
	}
}

// WithClock overrides the time source used for new entries and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *CLI) {
		c.now = now
	}
}

// NewWithArgs creates a CLI for the home directory selected by args.
func NewWithArgs(args *Args, opts ...Option) (*CLI, error) {
	home := ""
	verbose := false
	if args != nil {
		if args.Home != nil {
			home = *args.Home
		}
		verbose = args.Verbose
	}

	cfs, err := clipfs.NewWithHome(home)
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case args != nil && args.LogLevel != nil:
		level = logging.ParseLevel(*args.LogLevel)
	case args != nil && args.Daemon != nil:
		level = zerolog.InfoLevel
	}
	defaults := []Option{WithLogger(logging.New(os.Stderr, level, "clippy"))}
	return newCLI(cfs, append(defaults, opts...)...), nil
}

func newCLI(cfs *clipfs.ClipFS, opts ...Option) *CLI {
	c := &CLI{
		fs:      cfs,
		configs: config.NewConfigManagerWithPath(cfs.ConfigPath()),
		log:     zerolog.Nop(),
		in:      os.Stdin,
		out:     os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clipboard == nil {
		c.clipboard = sysboard.New()
	}

	cfg, err := c.configs.Load()
	if err != nil {
		c.log.Warn().Err(err).Str("path", c.configs.GetConfigPath()).Msg("config unreadable, using defaults")
	}
	c.manager = history.Open(cfs, cfg, history.WithLogger(c.log), history.WithClock(c.now))
	return c
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.List != nil:
		return c.executeList(args.List)
	case args.Get != nil:
		return c.executeGet(args.Get)
	case args.Copy != nil:
		return c.executeCopy(args.Copy)
	case args.Pin != nil:
		return c.executePin(args.Pin)
	case args.Unpin != nil:
		return c.executeUnpin(args.Unpin)
	case args.Delete != nil:
		return c.executeDelete(args.Delete)
	case args.Clear != nil:
		return c.executeClear(args.Clear)
	case args.Cleanup != nil:
		return c.executeCleanup()
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Daemon != nil:
		return c.executeDaemon(ctx)
	case args.Pick != nil:
		return c.launchTUI(history.KindFor(args.Pick.Pins))
	default:
		return c.launchTUI(history.KindHistory)
	}
}

// executeList handles 'clippy list'
func (c *CLI) executeList(cmd *ListCmd) error {
	kind := history.KindFor(cmd.Pins)
	records := c.manager.List(kind)
	if len(records) == 0 {
		fmt.Fprintf(c.out, "No %s entries.\n", kind)
		return nil
	}
	if cmd.Limit > 0 && len(records) > cmd.Limit {
		records = records[:cmd.Limit]
	}

	now := c.now()
	for i, rec := range records {
		fmt.Fprintf(c.out, "%3d  %-16s  %s\n", i, history.FormatTimestamp(rec, now), history.Preview(rec))
	}
	return nil
}

// executeGet handles 'clippy get'
func (c *CLI) executeGet(cmd *GetCmd) error {
	rec, err := c.manager.Get(history.KindFor(cmd.Pins), cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to get entry %d: %w", cmd.Index, err)
	}
	data, err := c.manager.Payload(rec)
	if err != nil {
		return fmt.Errorf("failed to read entry %d: %w", cmd.Index, err)
	}

	if cmd.Output != nil {
		if err := os.WriteFile(*cmd.Output, data, 0o600); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(c.out, "Written to %s: %s\n", *cmd.Output, history.Preview(rec))
		return nil
	}

	_, err = c.out.Write(data)
	return err
}

// executeCopy handles 'clippy copy'
func (c *CLI) executeCopy(cmd *CopyCmd) error {
	rec, err := c.manager.Get(history.KindFor(cmd.Pins), cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to get entry %d: %w", cmd.Index, err)
	}
	if err := c.copyRecord(rec); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Copied to clipboard: %s\n", history.Preview(rec))
	return nil
}

func (c *CLI) copyRecord(rec store.Record) error {
	data, err := c.manager.Payload(rec)
	if err != nil {
		return fmt.Errorf("failed to read entry: %w", err)
	}
	format := clipboard.FormatText
	if rec.IsImage() {
		format = clipboard.FormatImage
	}
	if err := c.clipboard.Write(format, data); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}

// executePin handles 'clippy pin'
func (c *CLI) executePin(cmd *PinCmd) error {
	rec, err := c.manager.Pin(cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to pin entry %d: %w", cmd.Index, err)
	}
	fmt.Fprintf(c.out, "Pinned: %s\n", history.Preview(rec))
	return nil
}

// executeUnpin handles 'clippy unpin'
func (c *CLI) executeUnpin(cmd *UnpinCmd) error {
	rec, err := c.manager.Unpin(cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to unpin entry %d: %w", cmd.Index, err)
	}
	fmt.Fprintf(c.out, "Unpinned: %s\n", history.Preview(rec))
	return nil
}

// executeDelete handles 'clippy delete'
func (c *CLI) executeDelete(cmd *DeleteCmd) error {
	rec, err := c.manager.Delete(history.KindFor(cmd.Pins), cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", cmd.Index, err)
	}
	fmt.Fprintf(c.out, "Deleted: %s\n", history.Preview(rec))
	return nil
}

// executeClear handles 'clippy clear'
func (c *CLI) executeClear(cmd *ClearCmd) error {
	kind := history.KindFor(cmd.Pins)
	count := len(c.manager.List(kind))
	if count == 0 {
		fmt.Fprintf(c.out, "No %s entries.\n", kind)
		return nil
	}

	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete %d %s entries. Continue? [y/N]: ", count, kind)
		response, _ := bufio.NewReader(c.in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	removed, err := c.manager.Clear(kind)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", kind, err)
	}
	fmt.Fprintf(c.out, "Cleared %d %s entries.\n", removed, kind)
	return nil
}

// executeCleanup handles 'clippy cleanup'
func (c *CLI) executeCleanup() error {
	expired, err := c.manager.CleanupExpired()
	if err != nil {
		return fmt.Errorf("failed to remove expired entries: %w", err)
	}
	pruned, err := c.manager.PruneBlobs()
	if err != nil {
		return fmt.Errorf("failed to prune images: %w", err)
	}
	fmt.Fprintf(c.out, "Removed %d expired entries and %d unreferenced images.\n", expired, pruned)
	return nil
}

// executeConfig handles 'clippy config'
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configs.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.configs.Set(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	case cmd.List != nil:
		cfg, err := c.configs.Load()
		if err != nil {
			c.log.Warn().Err(err).Msg("config unreadable, showing defaults")
		}
		data, err := config.MarshalYAML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "# %s\n", c.configs.GetConfigPath())
		_, err = c.out.Write(data)
		return err
	default:
		return errors.New("no config subcommand specified")
	}
}

// executeDaemon handles 'clippy daemon'
func (c *CLI) executeDaemon(ctx context.Context) error {
	if !c.clipboard.IsSupported() {
		return errors.WithDetails(clipboard.ErrUnsupported, "reason", "no clipboard backend available")
	}
	d := daemon.New(c.clipboard, c.manager)
	return d.Run(logging.NewContext(ctx, c.log.With().Str("component", "daemon").Logger()))
}

// launchTUI starts the interactive picker
func (c *CLI) launchTUI(kind history.Kind) error {
	if len(c.manager.List(history.KindHistory)) == 0 && len(c.manager.List(history.KindPins)) == 0 {
		fmt.Fprintln(c.out, "History is empty!")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Start the daemon to record clipboard changes:")
		fmt.Fprintln(c.out, "  clippy daemon")
		return nil
	}

	model := tui.NewModel(c.manager, c.clipboard, kind, tui.WithClock(c.now))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
